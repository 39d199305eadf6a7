package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/willibrandon/projsys/cmd/projsys/cli"
	"github.com/willibrandon/projsys/cmd/projsys/output"
	"github.com/willibrandon/projsys/dependencies"
)

type depsOptions struct {
	target     string
	tree       bool
	properties []string
}

// NewDepsCommand creates the deps command
func NewDepsCommand(console *output.Console, opts *cli.Options) *cobra.Command {
	depsOpts := &depsOptions{}
	cmd := &cobra.Command{
		Use:   "deps <project.assets.json>",
		Short: "Show the dependencies recorded in an assets file",
		Long: `Read project.assets.json and print every top-level package and project
reference of a target, with the packages, projects, assemblies, content
files and restore diagnostics below each one.

Without --target every target in the file is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(env *cli.Env) error {
				return runDeps(cmd.Context(), console, env, args[0], depsOpts)
			})
		},
	}
	cmd.Flags().StringVarP(&depsOpts.target, "target", "t", "", "Target framework (e.g. net8.0 or net8.0/win-x64)")
	cmd.Flags().BoolVar(&depsOpts.tree, "tree", false, "Write the dependencies in project tree notation")
	cmd.Flags().StringSliceVar(&depsOpts.properties, "properties", []string{"flags"},
		"Properties to write with --tree")
	return cmd
}

func runDeps(ctx context.Context, console *output.Console, env *cli.Env, path string, opts *depsOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := dependencies.LoadAssets(path)
	if err != nil {
		return err
	}

	targets := s.TargetNames()
	if opts.target != "" {
		if _, err := s.Target(opts.target); err != nil {
			return err
		}
		targets = []string{opts.target}
	}

	for i, target := range targets {
		v := dependencies.NewView(target, env.Logger)
		if err := v.Refresh(ctx, s); err != nil {
			return err
		}
		if i > 0 {
			console.Println()
		}

		if opts.tree {
			w, err := treeWriter(env.Config, opts.properties)
			if err != nil {
				return err
			}
			console.Println(w.Write(v.Tree()))
			continue
		}

		console.Header("%s", target)
		for _, item := range v.TopLevel() {
			printItem(console, item, 1)
			for _, child := range v.Children(item) {
				printItem(console, child, 2)
			}
		}
	}
	return nil
}

func printItem(console *output.Console, item dependencies.Item, depth int) {
	indent := strings.Repeat("  ", depth)
	if d, ok := item.(*dependencies.DiagnosticItem); ok {
		if d.Level() == dependencies.LevelError {
			console.Failure("%s%s", indent, d.Caption())
		} else {
			console.Caution("%s%s", indent, d.Caption())
		}
		return
	}
	console.Printf("%s%s\n", indent, item.Caption())
}
