// Package target orchestrates a single debug session: the loaded ELF/DWARF
// object, the ptrace-attached tracee, the breakpoint store, and the source
// cache, wired together the way spec.md §4.7/§4.8 describes the Target's
// responsibilities (C8).
package target

import (
	"log/slog"
	"syscall"

	"github.com/theIDinside/mdb/pkg/breakpoint"
	"github.com/theIDinside/mdb/pkg/bytereader"
	"github.com/theIDinside/mdb/pkg/dwarf"
	"github.com/theIDinside/mdb/pkg/dwarf/line"
	"github.com/theIDinside/mdb/pkg/elf"
	"github.com/theIDinside/mdb/pkg/mdberr"
	"github.com/theIDinside/mdb/pkg/ptrace"
	"github.com/theIDinside/mdb/pkg/sourcecache"
)

// compUnit bundles one Compilation Unit header together with the lazily
// built state Target memoizes per unit: its abbreviation table and (once
// requested) its line table, DW_AT_comp_dir, and DW_AT_name.
type compUnit struct {
	header  dwarf.UnitHeader
	abbrev  *dwarf.AbbrevTable
	root    dwarf.DIE
	lineTab *line.Table
}

// tracee is the subset of *ptrace.Tracee Target depends on, mirroring
// breakpoint.Poker: depending on an interface rather than the concrete
// type lets ContinueExecution and breakpoint resolution be unit tested
// against a fake without a real traced process.
type tracee interface {
	breakpoint.Poker
	GetRegs() (syscall.PtraceRegs, error)
	SetRegs(syscall.PtraceRegs) error
	SingleStep() error
	Cont(sig int) error
	Wait() (ptrace.WaitResult, error)
	Kill() error
	GetPid() int
}

// Target is a loaded object plus, once Launch has been called, a running
// traced process.
type Target struct {
	file     *elf.File
	symbols  *elf.SymbolTable
	pubnames *dwarf.Pubnames

	debugInfo   []byte
	debugAbbrev []byte
	debugLine   []byte
	debugStr    []byte

	units []*compUnit

	tracee tracee
	bps    *breakpoint.Store
	src    *sourcecache.Cache
}

// Load parses path's ELF and DWARF sections and builds the pubnames index,
// without launching or attaching to anything yet.
func Load(path string, policy breakpoint.Policy) (*Target, error) {
	img, err := elf.Load(path)
	if err != nil {
		return nil, err
	}
	f, err := elf.NewFile(img)
	if err != nil {
		return nil, err
	}
	symbols, err := f.SymbolTable()
	if err != nil {
		return nil, err
	}

	t := &Target{
		file:    f,
		symbols: symbols,
		bps:     breakpoint.NewStore(policy),
		src:     sourcecache.New(),
	}

	if t.debugInfo, err = f.DwarfSection(elf.DebugInfo); err != nil {
		return nil, err
	}
	if t.debugAbbrev, err = f.DwarfSection(elf.DebugAbbrev); err != nil {
		return nil, err
	}
	if t.debugStr, err = f.DwarfSection(elf.DebugStr); err != nil {
		return nil, err
	}
	// .debug_line may legitimately be absent for a stripped binary; only
	// pubnames/symbol-based breakpoints remain usable in that case.
	t.debugLine, _ = f.DwarfSection(elf.DebugLine)

	if err := t.loadUnits(); err != nil {
		return nil, err
	}

	if pubnamesData, err := f.DwarfSection(elf.DebugPubnames); err == nil {
		if t.pubnames, err = dwarf.ParsePubnames(pubnamesData); err != nil {
			return nil, err
		}
	}

	slog.Debug("loaded target", "path", path, "units", len(t.units), "pubnames", t.pubnames != nil)
	return t, nil
}

func (t *Target) loadUnits() error {
	it := dwarf.NewUnitIterator(t.debugInfo)
	for {
		header, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		t.units = append(t.units, &compUnit{header: header})
	}
	return nil
}

// unitFor returns the memoized compUnit whose [Offset, NextOffset) span
// contains debugInfoOffset.
func (t *Target) unitFor(debugInfoOffset int) *compUnit {
	for _, u := range t.units {
		if debugInfoOffset >= u.header.Offset && debugInfoOffset < u.header.NextOffset() {
			return u
		}
	}
	return nil
}

// abbrevTable lazily parses and memoizes u's abbreviation contribution,
// per spec.md §4.4 "Target memoizes the parsed table per Compilation Unit
// index across queries".
func (t *Target) abbrevTable(u *compUnit) (*dwarf.AbbrevTable, error) {
	if u.abbrev != nil {
		return u.abbrev, nil
	}
	table, err := dwarf.ParseAbbrevTable(t.debugAbbrev, int(u.header.AbbrevOffset))
	if err != nil {
		return nil, err
	}
	u.abbrev = table
	return table, nil
}

// rootDIE lazily reads u's first DIE (the compile_unit DIE carrying
// DW_AT_comp_dir, DW_AT_name, DW_AT_stmt_list).
func (t *Target) rootDIE(u *compUnit) (dwarf.DIE, error) {
	if u.root.Tag != 0 {
		return u.root, nil
	}
	table, err := t.abbrevTable(u)
	if err != nil {
		return dwarf.DIE{}, err
	}
	r := bytereader.New(t.debugInfo, 0)
	if err := r.Seek(u.header.Offset + u.header.HeaderLen); err != nil {
		return dwarf.DIE{}, err
	}
	die, err := dwarf.ReadDIE(r, table, u.header.Encoding(), t.debugStr)
	if err != nil {
		return dwarf.DIE{}, err
	}
	u.root = die
	return die, nil
}

// lineTable lazily runs u's Line Number Program and memoizes the result.
func (t *Target) lineTable(u *compUnit) (*line.Table, error) {
	if u.lineTab != nil {
		return u.lineTab, nil
	}
	root, err := t.rootDIE(u)
	if err != nil {
		return nil, err
	}
	stmtList, ok := root.StmtList()
	if !ok {
		return nil, mdberr.WithName(mdberr.SourceLocationNotFound, "compilation unit has no DW_AT_stmt_list")
	}
	if t.debugLine == nil {
		return nil, mdberr.WithName(mdberr.DwarfSectionNotFound, elf.DebugLine.Name())
	}
	header, err := line.ParseHeader(t.debugLine, int(stmtList))
	if err != nil {
		return nil, err
	}
	rows, err := line.Run(t.debugLine, header, u.header.AddressSize)
	if err != nil {
		return nil, err
	}
	tab := &line.Table{Header: header, Rows: rows}
	u.lineTab = tab
	return tab, nil
}

// compDir returns u's DW_AT_comp_dir, if present.
func (t *Target) compDir(u *compUnit) string {
	root, err := t.rootDIE(u)
	if err != nil {
		return ""
	}
	dir, _ := root.CompDir()
	return dir
}

// Launch starts command under the tracee, stopping it at the post-exec
// trap before any breakpoint is placed.
func (t *Target) Launch(command string, args []string) error {
	tracee, _, err := ptrace.Launch(command, args)
	if err != nil {
		slog.Error("launch failed", "command", command, "err", err)
		return err
	}
	slog.Info("tracee launched", "command", command, "pid", tracee.Pid)
	t.tracee = tracee
	return nil
}

// Tracee exposes the underlying ptrace.Tracee.
func (t *Target) Tracee() *ptrace.Tracee {
	pt, _ := t.tracee.(*ptrace.Tracee)
	return pt
}

// Breakpoints exposes the underlying breakpoint store for listing and
// removal from the CLI layer.
func (t *Target) Breakpoints() *breakpoint.Store { return t.bps }

// Registers returns the tracee's full register set.
func (t *Target) Registers() (syscall.PtraceRegs, error) {
	return t.tracee.GetRegs()
}

// SetBreakpointAtAddress places a breakpoint directly at addr.
func (t *Target) SetBreakpointAtAddress(addr uint64) (*breakpoint.Breakpoint, error) {
	return t.bps.Place(t.tracee, t.tracee.GetPid(), addr)
}

// SetBreakpointAtFunction resolves name via .debug_pubnames and places a
// breakpoint at its DW_AT_low_pc, falling back to the ELF symbol table
// when pubnames has no entry (stripped-of-pubnames but not stripped-of-
// symbols binaries), per spec.md §4.4/§4.7.
func (t *Target) SetBreakpointAtFunction(name string) (*breakpoint.Breakpoint, error) {
	if t.pubnames != nil {
		if pc, ok, err := dwarf.FunctionLowPCByName(t.debugInfo, t.debugAbbrev, t.debugStr, t.pubnames, name); err != nil {
			return nil, err
		} else if ok {
			return t.SetBreakpointAtAddress(pc)
		}
	}
	if pc, ok := t.symbols.FunctionLowPC(name); ok {
		return t.SetBreakpointAtAddress(pc)
	}
	return nil, mdberr.WithName(mdberr.FunctionNotFound, name)
}

// SetBreakpointAtSourceLocation iterates every compilation unit's line
// table looking for one whose header names file, placing a breakpoint at
// the first row matching (file, line), per spec.md §4.7.
func (t *Target) SetBreakpointAtSourceLocation(file string, requestLine int) (*breakpoint.Breakpoint, error) {
	for _, u := range t.units {
		tab, err := t.lineTable(u)
		if err != nil {
			continue
		}
		if !tab.HasFile(file) {
			continue
		}
		if row, ok := tab.RowForSourceLine(file, uint64(requestLine)); ok {
			return t.SetBreakpointAtAddress(row.Address)
		}
	}
	return nil, mdberr.WithName(mdberr.SourceLocationNotFound, file)
}

// ContinueExecution implements spec.md §4.7's "Continue across a
// breakpoint" procedure: if the tracee is stopped at a trap, its rip
// already points one past the int3. mdb disables any breakpoints at that
// address, rewinds rip, and under the Persistent policy single-steps the
// restored instruction and re-arms before resuming.
func (t *Target) ContinueExecution() (ptrace.WaitResult, error) {
	regs, err := t.tracee.GetRegs()
	if err != nil {
		return ptrace.WaitResult{}, err
	}
	bpAddr := regs.Rip - 1

	disabled, err := t.bps.DisableAllAt(t.tracee, bpAddr)
	if err != nil {
		return ptrace.WaitResult{}, err
	}
	if len(disabled) > 0 {
		slog.Debug("stepping over breakpoint", "addr", bpAddr, "policy", t.bps.Policy)
		regs.Rip = bpAddr
		if err := t.tracee.SetRegs(regs); err != nil {
			return ptrace.WaitResult{}, err
		}

		if t.bps.Policy == breakpoint.Persistent {
			if err := t.tracee.SingleStep(); err != nil {
				return ptrace.WaitResult{}, err
			}
			if _, err := t.tracee.Wait(); err != nil {
				return ptrace.WaitResult{}, err
			}
			for _, bp := range disabled {
				if err := t.bps.Enable(t.tracee, bp); err != nil {
					return ptrace.WaitResult{}, err
				}
			}
		}
	}

	if err := t.tracee.Cont(0); err != nil {
		return ptrace.WaitResult{}, err
	}
	return t.tracee.Wait()
}

// SourceLine is one line of a source listing window, with a flag marking
// the line the current PC maps to.
type SourceLine struct {
	Number    int
	Text      string
	IsCurrent bool
}

// SourceAtPC resolves pc to a (file, line) via whichever compilation
// unit's line table covers it, then returns a window of n lines centered
// on that line, per spec.md §4.7 "Source listing at PC".
func (t *Target) SourceAtPC(pc uint64, n int) ([]SourceLine, error) {
	for _, u := range t.units {
		tab, err := t.lineTable(u)
		if err != nil {
			continue
		}
		row, ok := tab.RowForPC(pc)
		if !ok {
			continue
		}
		path := tab.ResolvePath(row, t.compDir(u))
		window, first, err := t.src.Window(path, int(row.Line), n)
		if err != nil {
			return nil, err
		}
		out := make([]SourceLine, len(window))
		for i, text := range window {
			lineNo := first + i
			out[i] = SourceLine{Number: lineNo, Text: text, IsCurrent: lineNo == int(row.Line)}
		}
		return out, nil
	}
	return nil, mdberr.WithName(mdberr.SourceLocationNotFound, "no line table covers this address")
}

// FunctionAt returns the function symbol containing addr and the byte
// offset into it, per SPEC_FULL.md's symbol-classification supplement.
func (t *Target) FunctionAt(addr uint64) (elf.Symbol, uint64, bool) {
	return t.symbols.FunctionContaining(addr)
}

// Kill terminates the tracee.
func (t *Target) Kill() error {
	if t.tracee == nil {
		return nil
	}
	return t.tracee.Kill()
}
