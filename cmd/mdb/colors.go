package mdb

import "github.com/fatih/color"

// Color palette for REPL output, mirroring how a CPU-emulator debugger
// distinguishes addresses, registers, and status lines by color.
var (
	colorAddr       = color.New(color.FgCyan)
	colorReg        = color.New(color.FgGreen)
	colorValue      = color.New(color.FgWhite, color.Bold)
	colorHex        = color.New(color.FgMagenta)
	colorPrompt     = color.New(color.FgBlue, color.Bold)
	colorError      = color.New(color.FgRed, color.Bold)
	colorSuccess    = color.New(color.FgGreen)
	colorWarning    = color.New(color.FgYellow)
	colorHeader     = color.New(color.FgWhite, color.Bold, color.Underline)
	colorBreakpoint = color.New(color.FgRed, color.Bold)
	colorPC         = color.New(color.FgGreen, color.Bold)
	colorSource     = color.New(color.FgHiWhite)
	colorSourceFile = color.New(color.FgHiBlue)
	colorSourceLine = color.New(color.FgHiCyan)
)

// disableColor turns every palette entry into a pass-through, used when
// the ui.color setting is false.
func disableColor() {
	for _, c := range []*color.Color{
		colorAddr, colorReg, colorValue, colorHex, colorPrompt, colorError,
		colorSuccess, colorWarning, colorHeader, colorBreakpoint, colorPC,
		colorSource, colorSourceFile, colorSourceLine,
	} {
		c.DisableColor()
	}
}
