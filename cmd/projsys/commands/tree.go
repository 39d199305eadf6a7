package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/willibrandon/projsys/cmd/projsys/cli"
	"github.com/willibrandon/projsys/cmd/projsys/output"
	"github.com/willibrandon/projsys/tree"
)

type treeFormatOptions struct {
	properties []string
}

// NewTreeCommand creates the tree command group
func NewTreeCommand(console *output.Console, opts *cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Work with project tree text",
	}
	cmd.AddCommand(newTreeFormatCommand(console, opts))
	return cmd
}

func newTreeFormatCommand(console *output.Console, opts *cli.Options) *cobra.Command {
	formatOpts := &treeFormatOptions{}
	cmd := &cobra.Command{
		Use:   "format <file|->",
		Short: "Parse a project tree and write it back in normalized form",
		Long: `Parse a project tree written in the indented text notation and write it
back normalized. Parse errors are reported with line and column.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(env *cli.Env) error {
				w, err := treeWriter(env.Config, formatOpts.properties)
				if err != nil {
					return err
				}
				return runTreeFormat(console, w, args[0])
			})
		},
	}
	cmd.Flags().StringSliceVar(&formatOpts.properties, "properties", nil,
		"Properties to write (visibility, flags, filePath, itemType, subType, icons, displayOrder, all, none)")
	return cmd
}

func runTreeFormat(console *output.Console, w tree.Writer, path string) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read tree: %w", err)
	}

	root, err := tree.Parse(string(data))
	if err != nil {
		var perr *tree.ParseError
		if errors.As(err, &perr) && perr.Line > 0 {
			return fmt.Errorf("%s:%w", path, err)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	console.Println(w.Write(root))
	return nil
}
