// Package cli implements shopctl, the operator command line.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/config"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "shopctl",
	Short:         "Hello Crackers store operations",
	Long:          "shopctl migrates the schema, seeds the catalog, manages admins and produces exports from the shell.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

// env is what every subcommand needs: config, a logger and the database.
type env struct {
	cfg   config.Config
	log   *logrus.Logger
	db    *gorm.DB
	close func()
}

// openEnv is replaced in tests.
var openEnv = func() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, "text")
	gdb, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	closeDB := func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &env{cfg: cfg, log: log, db: gdb, close: closeDB}, nil
}

// withEnv adapts a handler needing env into a cobra RunE.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()
		return fn(cmd, args, e)
	}
}
