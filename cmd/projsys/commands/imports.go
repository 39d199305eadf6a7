package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/willibrandon/projsys/cmd/projsys/cli"
	"github.com/willibrandon/projsys/cmd/projsys/output"
	"github.com/willibrandon/projsys/dataflow"
	"github.com/willibrandon/projsys/imports"
	"github.com/willibrandon/projsys/observability"
	"github.com/willibrandon/projsys/tree"
)

type importsOptions struct {
	watch      bool
	properties []string
}

// NewImportsCommand creates the imports command
func NewImportsCommand(console *output.Console, opts *cli.Options) *cobra.Command {
	importsOpts := &importsOptions{}
	cmd := &cobra.Command{
		Use:   "imports [project]",
		Short: "Show the import tree of a project file",
		Long: `Load a project file and every file it imports, including the files MSBuild
adds implicitly, and print the imports subtree. With --watch the tree is
printed again whenever one of the files changes.

If no project is given, the project file in the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := ""
			if len(args) > 0 {
				project = args[0]
			}
			return withEnv(cmd.Context(), opts, func(env *cli.Env) error {
				return runImports(cmd.Context(), console, env, project, importsOpts)
			})
		},
	}
	cmd.Flags().BoolVar(&importsOpts.watch, "watch", false, "Keep running and print the tree again when an imported file changes")
	cmd.Flags().StringSliceVar(&importsOpts.properties, "properties", []string{"flags", "filePath"},
		"Properties to write (visibility, flags, filePath, itemType, subType, icons, displayOrder, all, none)")
	return cmd
}

func resolveProject(project string) (string, error) {
	if project == "" {
		project = "."
	}
	info, err := os.Stat(project)
	if err != nil {
		return "", fmt.Errorf("project not found: %w", err)
	}
	if info.IsDir() {
		return imports.FindProjectFile(project)
	}
	return project, nil
}

func runImports(ctx context.Context, console *output.Console, env *cli.Env, project string, opts *importsOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	projectPath, err := resolveProject(project)
	if err != nil {
		return err
	}
	w, err := treeWriter(env.Config, opts.properties)
	if err != nil {
		return err
	}
	loader, err := imports.NewLoader(env.Config.Imports.CacheSize, env.Logger)
	if err != nil {
		return err
	}

	source := dataflow.NewBroadcaster[*imports.Snapshot]()
	provider := imports.NewProvider(ctx, source,
		imports.WithLogger(env.Logger),
		imports.WithClassifier(env.Config.Classifier("")))
	defer provider.Close()

	if !opts.watch {
		s, err := loader.Load(ctx, projectPath)
		if err != nil {
			return err
		}
		source.Publish(s)
		provider.ShowAllFiles(true)
		if faults := provider.Faults(); len(faults) > 0 {
			return faults[len(faults)-1]
		}
		console.Println(w.Write(provider.Tree()))
		return nil
	}

	watcher, err := imports.NewWatcher(loader, projectPath, source, env.Config.Imports.Debounce, env.Logger)
	if err != nil {
		return err
	}
	env.Health.Register(importsHealthCheck(provider))
	defer env.Health.Unregister("imports")

	provider.ShowAllFiles(true)
	id := provider.Subscribe(func(root *tree.Node) {
		if root.Visible() {
			console.Println(w.Write(root))
			console.Println()
		}
	})
	defer provider.Unsubscribe(id)

	console.Info("Watching %s (Ctrl+C to stop)", projectPath)
	return watcher.Run(ctx)
}

// importsHealthCheck reports the provider degraded once a snapshot failed
// to apply, since the tree then shows an older snapshot.
func importsHealthCheck(provider *imports.Provider) observability.HealthCheck {
	return observability.HealthCheck{
		Name: "imports",
		Check: func(context.Context) observability.HealthCheckResult {
			if provider.State() != imports.Attached {
				return observability.HealthCheckResult{Status: observability.HealthStatusUnhealthy, Message: "provider detached"}
			}
			faults := provider.Faults()
			if len(faults) == 0 {
				return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
			}
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusDegraded,
				Message: faults[len(faults)-1].Error(),
				Details: map[string]string{"faults": strconv.Itoa(len(faults))},
			}
		},
	}
}
