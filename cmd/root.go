package cmd

import (
	"fmt"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theIDinside/mdb/cmd/mdb"
)

var cfgFile string
var logFile string

// RootCmd is the base command when mdb is called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "mdb",
	Short: "A native source-level debugger for Linux x86-64 ELF binaries",
	Long: `mdb launches and controls a traced process via ptrace, resolving
breakpoints, registers, and source locations from the binary's own ELF
symbol table and DWARF v4 debug info -- no external disassembler or
debug-info library required.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.mdb.yaml)")
	RootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write structured logs to this file")
	RootCmd.PersistentFlags().Bool("one-shot", false, "disable breakpoints without re-arming them (default: persistent)")
	RootCmd.PersistentFlags().Int("source-window", 10, "number of source lines to show around the current PC")
	RootCmd.PersistentFlags().Bool("color", true, "colorize REPL output")
	viper.BindPFlag("breakpoints.oneShot", RootCmd.PersistentFlags().Lookup("one-shot"))
	viper.BindPFlag("source.window", RootCmd.PersistentFlags().Lookup("source-window"))
	viper.BindPFlag("ui.color", RootCmd.PersistentFlags().Lookup("color"))

	RootCmd.AddCommand(mdb.DebugCmd)
	cobra.OnInitialize(initConfig, initLogging)
}

// initConfig reads a config file and environment variables if set, per
// SPEC_FULL.md A2: default breakpoint policy, source-listing window size,
// and color on/off.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mdb")
	}

	viper.SetEnvPrefix("MDB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// initLogging wires log/slog to a stderr text handler and, when
// --log-file is set, fans records out to a file handler too via
// samber/slog-multi, per SPEC_FULL.md A3.
func initLogging() {
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mdb: could not open log file %s: %v\n", logFile, err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
}
