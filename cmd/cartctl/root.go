package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/marinamsm/GoMarketplace/internal/cart"
	"github.com/marinamsm/GoMarketplace/internal/config"
	"github.com/marinamsm/GoMarketplace/internal/logger"
	"github.com/marinamsm/GoMarketplace/internal/storage"
	"github.com/marinamsm/GoMarketplace/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

// app is what every command runs against; it is built in PersistentPreRunE.
type app struct {
	envFile string

	cfg      *config.Config
	log      *logrus.Logger
	storage  storage.Storage
	store    *cart.Store
	shutdown telemetry.ShutdownFunc
}

// execute runs one cartctl invocation and always releases what it opened.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close(context.Background())

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "cartctl",
		Short:        "Inspect and edit the locally persisted GoMarketplace cart",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional env file with configuration")

	root.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newIncrementCmd(a),
		newDecrementCmd(a),
		newClearDataCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context, logOut io.Writer) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.log = log

	shutdown, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, "cartctl", version)
	if err != nil {
		return err
	}
	a.shutdown = shutdown

	st, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	a.storage = st
	log.WithField("driver", cfg.Storage.Driver).Debug("storage opened")

	a.store = cart.New(ctx, st,
		cart.WithLogger(log),
		cart.WithWriteTimeout(cfg.WriteTimeout),
	)
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close storage")
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.log.WithError(err).Warn("failed to shut down tracer provider")
		}
	}
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
