/*
 * Copyright 2026 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"fmt"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/nlnwa/warcparquet/cmd/warcparquet/cmd/convert"
	"github.com/nlnwa/warcparquet/cmd/warcparquet/cmd/inspect"
	"github.com/nlnwa/warcparquet/cmd/warcparquet/cmd/ls"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type conf struct {
	cfgFile string
}

// NewCommand returns a new cobra.Command implementing the root command for warcparquet
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "warcparquet",
		Short: "Convert WARC files to Parquet",
		Long: `warcparquet reads WARC files and writes one Parquet table with one row per WARC record.

Header fields are mapped to typed columns and the record block is stored verbatim in the body column.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging(viper.GetString("log-level"), viper.GetString("log-formatter"))
		},
	}

	cobra.OnInitialize(func() { c.initConfig() })

	// Flags
	cmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.warcparquet.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level, one of trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-formatter", "text", "log formatter, one of text, json")
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		log.Fatalf("Failed to bind root flags: %v", err)
	}

	// Subcommands
	cmd.AddCommand(convert.NewCommand())
	cmd.AddCommand(inspect.NewCommand())
	cmd.AddCommand(ls.NewCommand())

	return cmd
}

// initConfig reads in config file and ENV variables if set.
func (c *conf) initConfig() {
	if c.cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(c.cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			log.Fatal(err)
		}

		// Search config in home directory with name ".warcparquet" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".warcparquet")
	}

	viper.SetEnvPrefix("WARCPARQUET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func initLogging(level, formatter string) error {
	l, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(l)

	switch formatter {
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log formatter '%s'", formatter)
	}
	return nil
}
