package mdb

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/theIDinside/mdb/pkg/breakpoint"
	"github.com/theIDinside/mdb/pkg/mdbutil"
	"github.com/theIDinside/mdb/pkg/ptrace"
	"github.com/theIDinside/mdb/pkg/target"
)

// eflagsBit names the x86-64 status flags cmdRegs decodes, in bit order.
var eflagsBit = []struct {
	bit  int
	name string
}{
	{0, "CF"}, {2, "PF"}, {4, "AF"}, {6, "ZF"}, {7, "SF"}, {8, "TF"}, {9, "IF"}, {10, "DF"}, {11, "OF"},
}

// session holds the state of one interactive debugging session: the loaded
// target, the last command (so an empty line repeats it), and whether the
// REPL loop should keep spinning.
type session struct {
	t           *target.Target
	running     bool
	launched    bool
	lastCmd     string
	sourceLines int
}

func newSession(t *target.Target, sourceLines int) *session {
	return &session{t: t, running: true, sourceLines: sourceLines}
}

// Run drives the read-eval-print loop until the user quits or stdin closes.
func (s *session) Run() {
	colorSuccess.Println("Type 'help' for available commands.")
	reader := bufio.NewReader(os.Stdin)
	for s.running {
		colorPrompt.Print("(mdb) ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			line = s.lastCmd
		}
		if line != "" {
			s.lastCmd = line
			s.execute(line)
		}
	}
}

func (s *session) execute(line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "launch", "start":
		s.cmdLaunch(args)
	case "continue", "c":
		s.cmdContinue()
	case "break", "b":
		s.cmdBreak(args)
	case "delete", "d":
		s.cmdDelete(args)
	case "list", "l":
		s.cmdList()
	case "regs", "r":
		s.cmdRegs()
	case "source", "src":
		s.cmdSource(args)
	case "where", "bt":
		s.cmdWhere()
	case "help", "h", "?":
		s.cmdHelp()
	case "quit", "q", "exit":
		s.running = false
		colorSuccess.Println("Exiting debugger.")
	default:
		colorError.Printf("Unknown command: %s. ", cmd)
		fmt.Println("Type 'help' for available commands.")
	}
}

func (s *session) cmdLaunch(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: launch <command> [args...]")
		return
	}
	if s.launched {
		colorError.Println("Already launched.")
		return
	}
	slog.Debug("launching tracee", "command", args[0], "args", args[1:])
	if err := s.t.Launch(args[0], args[1:]); err != nil {
		colorError.Printf("Error: %v\n", err)
		return
	}
	s.launched = true
	colorSuccess.Printf("Launched %s, stopped at entry.\n", args[0])
	s.showCurrentLocation()
}

func (s *session) cmdContinue() {
	if !s.requireLaunched() {
		return
	}
	slog.Debug("continuing execution")
	res, err := s.t.ContinueExecution()
	if err != nil {
		colorError.Printf("Error: %v\n", err)
		return
	}
	s.handleWait(res)
}

func (s *session) handleWait(res ptrace.WaitResult) {
	switch res.Kind {
	case ptrace.ExitedNormally:
		colorSuccess.Printf("Process exited with code %s\n", colorValue.Sprintf("%d", res.ExitCode))
		s.launched = false
	case ptrace.Killed:
		colorWarning.Printf("Process killed by signal %s\n", res.Signal)
		s.launched = false
	case ptrace.CoreDumped:
		colorWarning.Printf("Process core dumped (signal %s)\n", res.Signal)
		s.launched = false
	case ptrace.Stopped:
		colorBreakpoint.Printf("Stopped on signal %s\n", res.Signal)
		s.showCurrentLocation()
	default:
		fmt.Printf("Wait returned: %+v\n", res)
	}
}

func (s *session) cmdBreak(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: break <0xADDR | function | file:line>")
		return
	}
	spec := args[0]

	var bp *breakpoint.Breakpoint
	var err error

	switch {
	case strings.HasPrefix(spec, "0x"):
		var addr uint64
		addr, err = parseAddress(spec)
		if err == nil {
			bp, err = s.t.SetBreakpointAtAddress(addr)
		}
	case strings.Contains(spec, ":"):
		parts := strings.SplitN(spec, ":", 2)
		var lineNo int
		lineNo, err = strconv.Atoi(parts[1])
		if err == nil {
			bp, err = s.t.SetBreakpointAtSourceLocation(parts[0], lineNo)
		}
	default:
		bp, err = s.t.SetBreakpointAtFunction(spec)
	}

	if err != nil {
		colorError.Printf("Error: %v\n", err)
		return
	}
	colorSuccess.Printf("Breakpoint %s set at %s\n", colorValue.Sprintf("%d", bp.ID), colorAddr.Sprintf("%#x", bp.Address))
}

func (s *session) cmdDelete(args []string) {
	if !s.requireLaunched() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: delete <id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		colorError.Printf("Invalid id: %s\n", args[0])
		return
	}
	if err := s.t.Breakpoints().Remove(s.t.Tracee(), id); err != nil {
		colorError.Printf("Error: %v\n", err)
		return
	}
	colorSuccess.Printf("Deleted breakpoint %s\n", colorValue.Sprintf("%d", id))
}

func (s *session) cmdList() {
	bps := s.t.Breakpoints().All()
	if len(bps) == 0 {
		fmt.Println("No breakpoints set.")
		return
	}
	colorHeader.Println("Breakpoints:")
	for _, bp := range bps {
		status := colorSuccess.Sprint("enabled")
		if !bp.Enabled {
			status = colorWarning.Sprint("disabled")
		}
		fmt.Printf("  %s  %s  %s\n", colorValue.Sprintf("%-3d", bp.ID), colorAddr.Sprintf("%#x", bp.Address), status)
	}
}

func (s *session) cmdRegs() {
	if !s.requireLaunched() {
		return
	}
	regs, err := s.t.Registers()
	if err != nil {
		colorError.Printf("Error: %v\n", err)
		return
	}
	colorHeader.Println("Registers:")
	fmt.Printf("  %s %s  %s %s  %s %s\n",
		colorReg.Sprint("rip"), colorHex.Sprintf("%#016x", regs.Rip),
		colorReg.Sprint("rsp"), colorHex.Sprintf("%#016x", regs.Rsp),
		colorReg.Sprint("rbp"), colorHex.Sprintf("%#016x", regs.Rbp))
	fmt.Printf("  %s %s  %s %s  %s %s\n",
		colorReg.Sprint("rax"), colorHex.Sprintf("%#016x", regs.Rax),
		colorReg.Sprint("rbx"), colorHex.Sprintf("%#016x", regs.Rbx),
		colorReg.Sprint("rcx"), colorHex.Sprintf("%#016x", regs.Rcx))

	fmt.Printf("  %s %s  [ %s ]\n", colorReg.Sprint("eflags"), colorHex.Sprintf("%#x", regs.Eflags), decodeEflags(regs.Eflags))
}

// decodeEflags renders the set status flags of eflags as a space-separated
// mnemonic list, using a BitView rather than hand-rolled shifts per flag.
func decodeEflags(eflags uint64) string {
	view := mdbutil.CreateBitView(&eflags)
	var set []string
	for _, f := range eflagsBit {
		if view.Read(f.bit, 1) != 0 {
			set = append(set, f.name)
		}
	}
	return strings.Join(set, " ")
}

func (s *session) cmdSource(args []string) {
	if !s.requireLaunched() {
		return
	}
	n := s.sourceLines
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	regs, err := s.t.Registers()
	if err != nil {
		colorError.Printf("Error: %v\n", err)
		return
	}
	lines, err := s.t.SourceAtPC(regs.Rip, n)
	if err != nil {
		colorError.Printf("Error: %v\n", err)
		return
	}
	for _, l := range lines {
		marker := "  "
		if l.IsCurrent {
			marker = colorPC.Sprint("=>")
		}
		fmt.Printf("%s %s  %s\n", marker, colorSourceLine.Sprintf("%4d", l.Number), colorSource.Sprint(l.Text))
	}
}

func (s *session) cmdWhere() {
	if !s.requireLaunched() {
		return
	}
	regs, err := s.t.Registers()
	if err != nil {
		colorError.Printf("Error: %v\n", err)
		return
	}
	s.printLocation(regs.Rip)
}

func (s *session) showCurrentLocation() {
	if !s.launched {
		return
	}
	regs, err := s.t.Registers()
	if err != nil {
		return
	}
	s.printLocation(regs.Rip)
}

func (s *session) printLocation(pc uint64) {
	if sym, off, ok := s.t.FunctionAt(pc); ok {
		fmt.Printf("%s %s (%s+%s)\n", colorPC.Sprint("=>"), colorAddr.Sprintf("%#x", pc), colorSourceFile.Sprint(sym.Name), colorHex.Sprintf("%#x", off))
	} else {
		fmt.Printf("%s %s\n", colorPC.Sprint("=>"), colorAddr.Sprintf("%#x", pc))
	}
	if lines, err := s.t.SourceAtPC(pc, 1); err == nil && len(lines) > 0 {
		fmt.Printf("   %s  %s\n", colorSourceLine.Sprintf("%4d", lines[0].Number), colorSource.Sprint(lines[0].Text))
	}
}

func (s *session) requireLaunched() bool {
	if !s.launched {
		colorError.Println("No process running. Use 'launch <command>' first.")
		return false
	}
	return true
}

func (s *session) cmdHelp() {
	colorHeader.Println("Available commands:")
	fmt.Println(`  launch, start <cmd> [args...]  - launch and attach to a new process
  continue, c                    - continue execution until the next trap
  break, b <0xADDR|func|file:line> - set a breakpoint
  delete, d <id>                  - remove breakpoint by id
  list, l                         - list breakpoints
  regs, r                         - show register state
  source, src [n]                 - show n lines of source around current pc
  where, bt                       - show current location
  help, h                         - show this help
  quit, q                         - exit the debugger`)
}

func parseAddress(str string) (uint64, error) {
	str = strings.TrimPrefix(strings.ToLower(str), "0x")
	val, err := strconv.ParseUint(str, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", str)
	}
	return val, nil
}
