// Copyright 2020 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"io/ioutil"
	"os"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pingcap/interleave/pkg/client"
	"github.com/pingcap/interleave/pkg/config"
	"github.com/pingcap/interleave/pkg/history"
	"github.com/pingcap/interleave/pkg/logger"
	"github.com/pingcap/interleave/pkg/runner"
	"github.com/pingcap/interleave/pkg/script"
	"github.com/pingcap/interleave/util"
)

type flags struct {
	connect      string
	configPath   string
	continueMode bool
	rounds       int
	setup        string
	history      string
	logLevel     string
	logFile      string
	proxy        string
	dryRun       bool
	printVersion bool
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "interleave [flags] script.sql...",
		Short:         "Execute SQL statements in all possible interleavings",
		Long:          "Each script is run by its own client. Every order-preserving interleaving of the scripts is executed against the database, one after another.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if f.printVersion {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.printVersion {
				util.PrintInfo()
				return nil
			}
			err := run(context.Background(), cmd, f, args)
			if err != nil {
				log.Error("interleave failed", zap.String("stack", errors.ErrorStack(err)))
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&f.connect, "connect", "c", "", "connect to the database URL or DSN, defaults to $"+config.EnvDatabaseURL)
	cmd.Flags().StringVar(&f.configPath, "config", "", "config file path")
	cmd.Flags().BoolVar(&f.continueMode, "continue", false, "log failed statements and go on instead of exiting")
	cmd.Flags().IntVar(&f.rounds, "rounds", 1, "how many times every interleaving is run")
	cmd.Flags().StringVar(&f.setup, "setup", "", "SQL script executed on a separate connection before every interleaving")
	cmd.Flags().StringVar(&f.history, "history", "", "file recording the outcome of every statement")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "debug", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "log file, logs go to stdout when empty")
	cmd.Flags().StringVar(&f.proxy, "proxy", "", "dial the database through this proxy, e.g. socks5://127.0.0.1:1080")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the interleavings and exit")
	cmd.Flags().BoolVarP(&f.printVersion, "version", "V", false, "print version")
	return cmd
}

// loadConfig merges the config file with the flags which are actually set.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.Init()
	if f.configPath != "" {
		if !util.IsFileExist(f.configPath) {
			return nil, errors.Errorf("config file %s not found", f.configPath)
		}
		if err := cfg.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("continue") {
		cfg.Options.ExitOnFail = !f.continueMode
	}
	if changed("rounds") {
		cfg.Options.Rounds = f.rounds
	}
	if changed("setup") {
		cfg.Options.Setup = f.setup
	}
	if changed("history") {
		cfg.Options.History = f.history
	}
	if changed("log-level") {
		cfg.Options.LogLevel = f.logLevel
	}
	if changed("log-file") {
		cfg.Options.LogFile = f.logFile
	}
	if changed("proxy") {
		cfg.Options.Proxy = f.proxy
	}
	return cfg, cfg.Validate()
}

// closeAndKeepErr closes c and stores its error in err unless err already holds one.
func closeAndKeepErr(err *error, c io.Closer) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func run(ctx context.Context, cmd *cobra.Command, f *flags, paths []string) (err error) {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := logger.InitGlobalLogger(logger.Config{Level: cfg.Options.LogLevel, File: cfg.Options.LogFile}); err != nil {
		return err
	}

	scripts, err := script.Load(ctx, paths)
	if err != nil {
		return err
	}
	if f.dryRun {
		return runner.DryRun(cmd.OutOrStdout(), scripts)
	}

	dsn, err := config.ResolveDSN(f.connect, os.Getenv(config.EnvDatabaseURL), cfg.DSN)
	if err != nil {
		return err
	}
	if err := util.SetMySQLProxy(cfg.Options.Proxy); err != nil {
		return err
	}
	if cfg.Options.Setup != "" && !util.IsFileExist(cfg.Options.Setup) {
		return errors.Errorf("setup script %s not found", cfg.Options.Setup)
	}

	var recorder *history.Recorder
	if cfg.Options.History != "" {
		if recorder, err = history.NewRecorder(cfg.Options.History); err != nil {
			return err
		}
		defer closeAndKeepErr(&err, recorder)
		log.Info("recording history", zap.String("path", cfg.Options.History), zap.String("run-id", recorder.RunID()))
	}

	pool := client.NewPool(dsn)
	defer closeAndKeepErr(&err, pool)
	r := runner.New(cfg, pool, recorder)
	defer closeAndKeepErr(&err, r)

	if cfg.Options.Setup != "" {
		content, err := ioutil.ReadFile(cfg.Options.Setup)
		if err != nil {
			return errors.Annotatef(err, "read setup script %s", cfg.Options.Setup)
		}
		sqls, err := script.Parse(string(content))
		if err != nil {
			return errors.Annotatef(err, "parse setup script %s", cfg.Options.Setup)
		}
		r.SetSetup(sqls, client.DSNConnector(dsn))
	}

	return r.Run(ctx, scripts)
}
