// Package ptrace wraps the Linux ptrace(2) process-tracing primitives mdb
// needs: launching a tracee under TRACE_ME, waiting on it, peeking and
// poking its memory, and reading/writing its register set. It builds
// directly on the standard library's syscall package rather than an
// external ptrace binding, matching how Go programs that shell out to
// ptrace on Linux are written (syscall.PtraceRegs, PtraceGetRegs,
// PtracePeekText/PokeText, PtraceCont, PtraceSingleStep, Wait4).
package ptrace

import (
	"os"
	"runtime"
	"syscall"

	"github.com/theIDinside/mdb/pkg/mdberr"
)

// addrNoRandomize is the Linux personality(2) flag that disables ASLR for
// the calling process and its descendants. Launch sets it on the debugger
// itself before starting the child, which inherits it, so the tracee's
// load addresses are reproducible across launches.
const addrNoRandomize = 0x0040000

// Tracee is a running, ptrace-attached child process.
type Tracee struct {
	Pid     int
	process *os.Process
}

// WaitKind discriminates the tagged variant spec.md's data model calls
// "Wait status".
type WaitKind int

const (
	Continued WaitKind = iota
	ExitedNormally
	Stopped
	Killed
	CoreDumped
)

// WaitResult is the decoded outcome of a waitpid(2) call.
type WaitResult struct {
	Kind     WaitKind
	Pid      int
	ExitCode int
	Signal   syscall.Signal
}

// Launch starts command under ptrace: it disables ASLR via the
// ADDR_NO_RANDOMIZE personality, requests PTRACE_TRACEME in the child,
// execs the program, and waits for the post-exec SIGTRAP. ptrace
// requests must all originate from the thread that attached, so callers
// on this Tracee's goroutine should call runtime.LockOSThread first;
// Launch does so itself and the lock is never released, since a tracer
// goroutine cannot safely hand off to another OS thread mid-session.
func Launch(command string, args []string) (*Tracee, WaitResult, error) {
	runtime.LockOSThread()

	if _, _, errno := syscall.RawSyscall(syscall.SYS_PERSONALITY, addrNoRandomize, 0, 0); errno != 0 {
		return nil, WaitResult{}, mdberr.Wrap(mdberr.ProcessLaunchError, command, errno)
	}

	proc, err := os.StartProcess(command, append([]string{command}, args...), &os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
		Sys: &syscall.SysProcAttr{
			Ptrace:    true,
			Pdeathsig: syscall.SIGKILL,
		},
	})
	if err != nil {
		return nil, WaitResult{}, mdberr.Wrap(mdberr.ProcessLaunchError, command, err)
	}

	t := &Tracee{Pid: proc.Pid, process: proc}
	res, err := t.Wait()
	if err != nil {
		return nil, WaitResult{}, err
	}
	if res.Kind != Stopped || res.Signal != syscall.SIGTRAP {
		return nil, WaitResult{}, mdberr.WithName(mdberr.UnexpectedWaitStatus, "expected post-exec SIGTRAP")
	}

	if err := syscall.PtraceSetOptions(t.Pid, syscall.PTRACE_O_TRACECLONE); err != nil {
		return nil, WaitResult{}, mdberr.Wrap(mdberr.PtraceRequestError, "PTRACE_SETOPTIONS", err)
	}

	return t, res, nil
}

// Wait blocks until the tracee changes state and decodes the result.
func (t *Tracee) Wait() (WaitResult, error) {
	var status syscall.WaitStatus
	pid, err := syscall.Wait4(t.Pid, &status, 0, nil)
	if err != nil {
		return WaitResult{}, mdberr.Wrap(mdberr.WaitError, "wait4", err)
	}

	switch {
	case status.Exited():
		return WaitResult{Kind: ExitedNormally, Pid: pid, ExitCode: status.ExitStatus()}, nil
	case status.Signaled():
		if status.CoreDump() {
			return WaitResult{Kind: CoreDumped, Pid: pid, Signal: status.Signal()}, nil
		}
		return WaitResult{Kind: Killed, Pid: pid, Signal: status.Signal()}, nil
	case status.Stopped():
		return WaitResult{Kind: Stopped, Pid: pid, Signal: status.StopSignal()}, nil
	case status.Continued():
		return WaitResult{Kind: Continued, Pid: pid}, nil
	default:
		return WaitResult{}, mdberr.WithName(mdberr.UnexpectedWaitStatus, "unrecognized wait status")
	}
}

// Cont resumes the tracee, optionally delivering sig (0 for none).
func (t *Tracee) Cont(sig int) error {
	if err := syscall.PtraceCont(t.Pid, sig); err != nil {
		return mdberr.Wrap(mdberr.PtraceRequestError, "PTRACE_CONT", err)
	}
	return nil
}

// SingleStep resumes the tracee for exactly one instruction.
func (t *Tracee) SingleStep() error {
	if err := syscall.PtraceSingleStep(t.Pid); err != nil {
		return mdberr.Wrap(mdberr.PtraceRequestError, "PTRACE_SINGLESTEP", err)
	}
	return nil
}

// PeekWord reads the 8-byte word at addr in the tracee's address space.
func (t *Tracee) PeekWord(addr uint64) (uint64, error) {
	var buf [8]byte
	n, err := syscall.PtracePeekText(t.Pid, uintptr(addr), buf[:])
	if err != nil {
		return 0, mdberr.Wrap(mdberr.PtraceRequestError, "PTRACE_PEEKTEXT", err)
	}
	if n != len(buf) {
		return 0, mdberr.WithName(mdberr.PtraceRequestError, "short peek")
	}
	return leU64(buf[:]), nil
}

// PokeWord writes word to addr in the tracee's address space.
func (t *Tracee) PokeWord(addr uint64, word uint64) error {
	var buf [8]byte
	putLeU64(buf[:], word)
	n, err := syscall.PtracePokeText(t.Pid, uintptr(addr), buf[:])
	if err != nil {
		return mdberr.Wrap(mdberr.PtraceRequestError, "PTRACE_POKETEXT", err)
	}
	if n != len(buf) {
		return mdberr.WithName(mdberr.PtraceRequestError, "short poke")
	}
	return nil
}

// GetRegs returns the tracee's full user register set.
func (t *Tracee) GetRegs() (syscall.PtraceRegs, error) {
	var regs syscall.PtraceRegs
	if err := syscall.PtraceGetRegs(t.Pid, &regs); err != nil {
		return syscall.PtraceRegs{}, mdberr.Wrap(mdberr.PtraceRequestError, "PTRACE_GETREGS", err)
	}
	return regs, nil
}

// SetRegs writes the tracee's full user register set.
func (t *Tracee) SetRegs(regs syscall.PtraceRegs) error {
	if err := syscall.PtraceSetRegs(t.Pid, &regs); err != nil {
		return mdberr.Wrap(mdberr.PtraceRequestError, "PTRACE_SETREGS", err)
	}
	return nil
}

// SetPC reads the register set, sets Rip, and writes it back.
func (t *Tracee) SetPC(addr uint64) error {
	regs, err := t.GetRegs()
	if err != nil {
		return err
	}
	regs.Rip = addr
	return t.SetRegs(regs)
}

// Kill sends SIGKILL to the tracee.
func (t *Tracee) Kill() error {
	return t.process.Kill()
}

// GetPid returns the tracee's process ID, for callers that depend on an
// interface rather than the concrete Tracee type.
func (t *Tracee) GetPid() int {
	return t.Pid
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func putLeU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}
