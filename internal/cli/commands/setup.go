package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	"github.com/leapstack-labs/leapgrid/pkg/adapter"
	"github.com/leapstack-labs/leapgrid/pkg/registry"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Adapter *adapter.Adapter
}

// NewCommandContext builds the engine stack shared by every command that
// materializes datasets. The returned cleanup tears down the registry and
// must be called, typically via defer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := config.FromContext(cmd.Context())
	logger := config.Logger(cmd.Context())

	params, err := registry.ParseParams(cfg.Engine)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New(logger)
	reg.Params = params

	cleanup := func() {
		_ = reg.Close()
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		Adapter: adapter.New(reg, logger),
	}, cleanup, nil
}
