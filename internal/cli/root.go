package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/rxtrace/internal/config"
	"github.com/roach88/rxtrace/internal/ledger"
	"github.com/roach88/rxtrace/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides the configured database path
	ConfigPath string

	// Clock and IDs override the ledger defaults (for testing).
	Clock *ledger.Clock
	IDs   ledger.IDGenerator

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rxtrace CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rxtrace",
		Short: "rxtrace - drug provenance ledger",
		Long: `Track drugs from registration through distribution and delivery to
retail sale, reconcile retailer inventory, and verify authenticity by
serial and batch number.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := opts.settings()
			if err != nil {
				return err
			}
			configureLogging(cfg, opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a CUE or JSON config file")

	cmd.AddCommand(NewDrugCommand(opts))
	cmd.AddCommand(NewShipmentCommand(opts))
	cmd.AddCommand(NewSaleCommand(opts))
	cmd.AddCommand(NewInventoryCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// settings resolves the config file once and applies flag overrides.
func (o *RootOptions) settings() (config.Config, error) {
	if o.cfg != nil {
		return *o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	o.cfg = &cfg
	return cfg, nil
}

// configureLogging installs the process-wide text logger on stderr.
func configureLogging(cfg config.Config, verbose bool) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// session is an open store with the ledger loaded from it.
type session struct {
	store  *store.Store
	ledger *ledger.Ledger
}

// openSession opens the configured database and loads the ledger.
func (o *RootOptions) openSession(ctx context.Context) (*session, error) {
	cfg, err := o.settings()
	if err != nil {
		return nil, err
	}

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	ledgerOpts := []ledger.Option{
		ledger.WithLogger(slog.Default()),
		ledger.WithThresholds(cfg.LowStockThreshold, cfg.NearExpiryDays),
	}
	if o.Clock != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(o.Clock))
	}
	if o.IDs != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithIDGenerator(o.IDs))
	}

	l, err := ledger.Open(ctx, st, ledgerOpts...)
	if err != nil {
		_ = st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load ledger", err)
	}
	return &session{store: st, ledger: l}, nil
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command is executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
