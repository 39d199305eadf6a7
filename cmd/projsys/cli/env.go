package cli

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/willibrandon/projsys/config"
	"github.com/willibrandon/projsys/observability"
)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigFile  string
	LogLevel    string
	MetricsAddr string
	Verbosity   string
}

// Env is the configuration, logger and telemetry a command runs with.
type Env struct {
	Config *config.Config
	Logger observability.Logger
	// Health is served at /health next to the metrics.
	Health *observability.HealthChecker

	tracing *observability.Tracing
	metrics *http.Server
}

// Open loads the configuration, applies flag overrides and starts tracing
// and the metrics endpoint when configured. Callers must Close the Env.
func (o *Options) Open(ctx context.Context) (*Env, error) {
	if o == nil {
		o = &Options{}
	}
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.MetricsAddr != "" {
		cfg.Metrics.Address = o.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env := &Env{
		Config: cfg,
		Logger: observability.NewLogger(os.Stderr, cfg.Level()),
		Health: observability.NewHealthChecker(),
	}

	env.tracing, err = observability.SetupTracing(ctx, cfg.TracerConfig(Version))
	if err != nil {
		return nil, err
	}

	if addr := cfg.Metrics.Address; addr != "" {
		env.metrics = observability.NewMetricsServer(addr, env.Health)
		go func() {
			if err := env.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				env.Logger.Error("Metrics server failed: {Error}", err)
			}
		}()
		env.Logger.Info("Serving metrics on {Address}", addr)
	}
	return env, nil
}

// Close flushes traces and stops the metrics endpoint.
func (e *Env) Close(ctx context.Context) error {
	var errs []error
	if e.metrics != nil {
		errs = append(errs, e.metrics.Shutdown(ctx))
	}
	if e.tracing != nil {
		errs = append(errs, e.tracing.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
