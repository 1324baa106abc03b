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

package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/pingcap/interleave/util"
)

// EnvDatabaseURL is the environment variable consulted when no endpoint flag is given.
const EnvDatabaseURL = "DATABASE_URL"

// ErrNoEndpoint is returned when the database endpoint is given nowhere.
var ErrNoEndpoint = errors.Errorf("database endpoint not set, use --connect, $%s or dsn in config file", EnvDatabaseURL)

// Options struct
type Options struct {
	ExitOnFail bool   `toml:"exit-on-fail"`
	Rounds     int    `toml:"rounds"`
	Setup      string `toml:"setup"`
	History    string `toml:"history"`
	LogLevel   string `toml:"log-level"`
	LogFile    string `toml:"log-file"`
	Proxy      string `toml:"proxy"`
}

// Config struct
type Config struct {
	DSN     string  `toml:"dsn"`
	Options Options `toml:"options"`
}

var initConfig = Config{
	Options: Options{
		ExitOnFail: true,
		Rounds:     1,
		LogLevel:   "debug",
	},
}

// Init get default Config
func Init() *Config {
	return initConfig.Copy()
}

// Load config from file
func (c *Config) Load(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Annotatef(err, "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warn("unknown config keys", zap.String("path", path), zap.Any("keys", undecoded))
	}
	return nil
}

// Copy Config struct
func (c *Config) Copy() *Config {
	cp := *c
	return &cp
}

// Validate checks option ranges
func (c *Config) Validate() error {
	if c.Options.Rounds < 1 {
		return errors.Errorf("rounds must be positive, got %d", c.Options.Rounds)
	}
	return nil
}

// ResolveDSN picks the database endpoint in order: the explicit flag, the
// environment, the config file. The chosen endpoint is normalized to a mysql DSN.
func ResolveDSN(flag, env, file string) (string, error) {
	var endpoint string
	switch {
	case flag != "":
		endpoint = flag
	case env != "":
		log.Warn("option --connect not set, using $" + EnvDatabaseURL)
		endpoint = env
	case file != "":
		endpoint = file
	default:
		return "", ErrNoEndpoint
	}
	dsn, err := util.NormalizeDSN(endpoint)
	return dsn, errors.Trace(err)
}
