package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Filipe-Ambrozio/stockwatch/internal/app"
	"github.com/Filipe-Ambrozio/stockwatch/internal/config"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
)

type cli struct {
	out io.Writer
	log *slog.Logger
	app *app.App

	envFile  string
	backend  string
	csvDir   string
	dbDriver string
	dbURL    string
	operator string
	noColor  bool
}

func (c *cli) principal() service.Principal {
	return service.LocalAdmin(c.operator)
}

func (c *cli) ctx(cmd *cobra.Command) context.Context {
	return logging.IntoContext(cmd.Context(), c.log)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Inspect and edit the expiry inventory",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config.LoadDotEnv(c.envFile)
			cfg := config.Load()
			if c.backend != "" {
				cfg.StoreBackend = c.backend
			}
			if c.csvDir != "" {
				cfg.CSVDir = c.csvDir
			}
			if c.dbDriver != "" {
				cfg.DBDriver = c.dbDriver
			}
			if c.dbURL != "" {
				cfg.DatabaseURL = c.dbURL
			}

			c.log = logging.NewWithWriter(errOut, config.EnvDefault("LOG_LEVEL", "warn"), "text")
			a, err := app.New(logging.IntoContext(cmd.Context(), c.log), cfg, c.log)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&c.envFile, "env", ".env", "dotenv file to load before reading the environment")
	f.StringVar(&c.backend, "store", "", "store backend, db or csv (default STORE_BACKEND)")
	f.StringVar(&c.csvDir, "csv-dir", "", "CSV store directory (default CSV_DIR)")
	f.StringVar(&c.dbDriver, "db-driver", "", "postgres, mysql or sqlite (default DB_DRIVER)")
	f.StringVar(&c.dbURL, "db-url", "", "database DSN (default DATABASE_URL)")
	f.StringVar(&c.operator, "as", service.AdminUsername, "name recorded as the author of changes")
	f.BoolVar(&c.noColor, "no-color", false, "print tiers without ANSI colors")

	root.AddCommand(
		newProductsCmd(c),
		newReportCmd(c),
		newUsersCmd(c),
		newStatusCmd(c),
		newImportCmd(c),
	)
	return root
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
