package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rzbill/cse/internal/config"
	"github.com/rzbill/cse/pkg/classify"
	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/policy"
	"github.com/rzbill/cse/pkg/reference"
	"github.com/rzbill/cse/pkg/store"
	"github.com/rzbill/cse/pkg/types"
	"github.com/spf13/cobra"
)

// loadSettings reads the configuration and applies the global flag overrides.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dataDirOverride != "" {
		cfg.DataDir = dataDirOverride
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	} else if verbose {
		cfg.Log.Level = "debug"
	} else if cfg.Log.Level == "info" {
		// CLI runs are quiet unless asked otherwise
		cfg.Log.Level = "warn"
	}
	return cfg, nil
}

// newCLILogger builds the logger for a command. Logs always go to stderr so
// stdout carries only command output.
func newCLILogger(cfg *config.Config) (log.Logger, error) {
	logCfg := cfg.Log
	logCfg.Output = "stderr"
	logCfg.NoColor = logCfg.NoColor || !isTerminal(os.Stderr)
	logger, err := log.ApplyConfig(logCfg)
	if err != nil {
		return nil, err
	}
	log.SetDefaultLogger(logger)
	return logger, nil
}

// environment bundles what most commands need.
type environment struct {
	cfg    *config.Config
	logger log.Logger
}

func newEnvironment() (*environment, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	logger, err := newCLILogger(cfg)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger}, nil
}

// typeRef builds the entity type of the configured vendor and namespace at
// the given generation.
func (e *environment) typeRef(version string) (types.EntityTypeRef, error) {
	gen, err := types.ParseGeneration(version)
	if err != nil {
		return types.EntityTypeRef{}, err
	}
	return types.EntityTypeRef{Vendor: e.cfg.Entity.Vendor, Nss: e.cfg.Entity.Nss, Version: string(gen)}, nil
}

// openStore opens the configured backend and returns a client over it. The
// returned function closes the backend.
func (e *environment) openStore() (*store.Client, func(), error) {
	backend, err := store.OpenBackend(e.cfg.Store.Backend, e.cfg.StorePath(), e.logger)
	if err != nil {
		return nil, nil, err
	}

	client := store.NewClient(backend,
		store.WithPageSize(e.cfg.Store.PageSize),
		store.WithLogger(e.logger))
	closer := func() {
		if err := backend.Close(); err != nil {
			e.logger.Warn("Failed to close entity store", log.Err(err))
		}
	}
	return client, closer, nil
}

// sizingLookup returns the default compute policy lookup. A non-empty
// override answers every datacenter with that name.
func (e *environment) sizingLookup(override string) policy.SizingPolicyLookup {
	static := policy.NewStaticLookup(e.cfg.SizingPolicy.Default, e.cfg.SizingPolicy.Overrides)
	if override != "" {
		static = policy.NewStaticLookup(override, nil)
	}
	return policy.NewRetryingLookup(static,
		policy.WithRetryTimeout(e.cfg.SizingPolicy.Retry.Timeout),
		policy.WithRetryInterval(e.cfg.SizingPolicy.Retry.Interval),
		policy.WithLogger(e.logger))
}

// exitCode maps domain errors onto distinct process exit codes.
func exitCode(err error) int {
	switch {
	case types.IsMalformedPayload(err), types.IsUnsupportedPayloadVersion(err):
		return 2
	case types.IsImmutableFieldViolation(err), types.IsConflictingOperation(err):
		return 3
	case store.IsNotFoundError(err):
		return 4
	case errors.Is(err, reference.ErrStatusNotObserved):
		return 5
	default:
		return 1
	}
}

// operationLabel renders an operation for humans.
func operationLabel(op classify.Operation) string {
	switch op {
	case classify.NoOp:
		return "no change"
	case classify.Resize:
		return "resize"
	case classify.Upgrade:
		return "upgrade"
	default:
		return op.String()
	}
}

// requireArgs is cobra.ExactArgs with a message naming the argument.
func requireArgs(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%s requires exactly one %s argument", cmd.CommandPath(), name)
		}
		return nil
	}
}
