// Package cmd provides the dew command-line interface.
//
// Configuration is layered, highest priority first:
//  1. Command-line flags (--config, --port, ...)
//  2. DEW_CONFIG_FILE environment variable
//  3. Individual environment variables (DEW_SERVER_PORT, ...)
//  4. Configuration file (.dew.yml in the current directory)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dew",
	Short: "An embedded HTTP application server with styled templates",
	Long: `Dew is a small HTTP application server built for embedding in a
scripting host. It owns a raw TCP listener, parses HTTP/1.1 itself, and
renders a template language with control flow and a CSS/JS-emitting
styled-block DSL.

Quick Start:
  dew serve                       Start the server
  dew serve --static /=./public   Serve a directory of files
  dew routes                      Print the configured route table
  dew version                     Show version information`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .dew.yml, can also use DEW_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig wires viper to the config file and DEW_ environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("DEW_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dew")
	}

	viper.SetEnvPrefix("DEW")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
