package commands

import (
	"context"

	"github.com/willibrandon/projsys/cmd/projsys/cli"
	"github.com/willibrandon/projsys/config"
	"github.com/willibrandon/projsys/tree"
)

// withEnv opens the command environment, runs fn and closes it.
func withEnv(ctx context.Context, opts *cli.Options, fn func(env *cli.Env) error) error {
	env, err := opts.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(context.Background()); cerr != nil {
			env.Logger.Warn("Shutdown failed: {Error}", cerr)
		}
	}()
	return fn(env)
}

// treeWriter returns the configured writer, with properties replacing the
// configured ones when given.
func treeWriter(cfg *config.Config, properties []string) (tree.Writer, error) {
	w := cfg.Writer()
	if len(properties) > 0 {
		opts, err := config.ParseWriterOptions(properties)
		if err != nil {
			return tree.Writer{}, err
		}
		w.Options = opts
	}
	return w, nil
}
