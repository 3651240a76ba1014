// Package mdb implements the mdb command's interactive debug session: the
// REPL, its command dispatcher, and the colorized output it prints.
package mdb

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theIDinside/mdb/pkg/breakpoint"
	"github.com/theIDinside/mdb/pkg/target"
)

// DebugCmd opens an interactive session on a binary's ELF/DWARF info.
// With only the binary given it does not launch the process -- use the
// REPL's 'launch' command once breakpoints have been set. Any further
// arguments are handed to 'launch' before the REPL starts.
var DebugCmd = &cobra.Command{
	Use:   "debug <binary>",
	Short: "Start an interactive source-level debugging session",
	Long: `Loads a binary's ELF symbol table and DWARF v4 debug info, then opens
an interactive REPL. Use 'launch' inside the REPL to start the traced
process, 'break' to set breakpoints by address, function name, or
file:line, and 'continue' to run until the next one is hit.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runDebug,
}

func runDebug(cmd *cobra.Command, args []string) {
	path := args[0]

	if !viper.GetBool("ui.color") {
		disableColor()
	}

	policy := breakpoint.Persistent
	if viper.GetBool("breakpoints.oneShot") {
		policy = breakpoint.OneShot
	}

	t, err := target.Load(path, policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdb: failed to load %s: %v\n", path, err)
		os.Exit(1)
	}

	windowSize := viper.GetInt("source.window")
	if windowSize <= 0 {
		windowSize = 10
	}

	colorSuccess.Printf("Loaded %s\n", path)
	s := newSession(t, windowSize)
	if len(args) > 1 {
		s.cmdLaunch(args[1:])
	}
	s.Run()
}
