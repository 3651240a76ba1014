// Package breakpoint implements the software breakpoint store (spec.md
// §4.7 C7): int3 byte-patching, enable/disable, and the per-address
// container a Target consults when deciding whether a trap belongs to
// mdb.
package breakpoint

import (
	"sort"

	"github.com/theIDinside/mdb/pkg/mdberr"
	"github.com/theIDinside/mdb/pkg/mdbutil"
	"golang.org/x/exp/maps"
)

// trapInstruction is the x86-64 one-byte software breakpoint, int3.
const trapInstruction = 0xCC

// Poker is the subset of ptrace.Tracee a breakpoint needs to patch and
// restore memory; Store depends on this interface rather than the
// concrete type so it can be unit tested against a fake tracee.
type Poker interface {
	PeekWord(addr uint64) (uint64, error)
	PokeWord(addr uint64, word uint64) error
}

// Breakpoint is one placed or pending breakpoint record, per spec.md's
// data model: (address, enabled, original_byte, pid).
type Breakpoint struct {
	ID           int
	Address      uint64
	Enabled      bool
	OriginalByte byte
	Pid          int
}

// Policy selects what Target.ContinueExecution does with a hit
// breakpoint once it has been stepped over; the Store only records it:
// OneShot disables and never re-arms; Persistent
// single-steps the original instruction back in, then re-patches 0xCC,
// per spec.md §4.12 / §9.
type Policy int

const (
	Persistent Policy = iota
	OneShot
)

// Store owns every breakpoint placed in one tracee, keyed by address so
// multiple requests can alias one location (spec.md §3 "a per-address
// container holds a set of breakpoints").
type Store struct {
	byAddress map[uint64][]*Breakpoint
	nextID    int
	Policy    Policy
}

// NewStore constructs an empty breakpoint store under the given policy.
func NewStore(policy Policy) *Store {
	return &Store{byAddress: make(map[uint64][]*Breakpoint), Policy: policy, nextID: 1}
}

// Place inserts a new, enabled breakpoint at addr: it reads the current
// word, saves its low byte as OriginalByte, and writes 0xCC into that
// byte, per spec.md §4.7 "Software breakpoint placement". When addr
// already has breakpoint records, the new one takes their OriginalByte,
// since the byte in memory may already be the 0xCC they wrote.
func (s *Store) Place(p Poker, pid int, addr uint64) (*Breakpoint, error) {
	word, err := p.PeekWord(addr)
	if err != nil {
		return nil, err
	}
	orig := byte(word)
	if existing := s.byAddress[addr]; len(existing) > 0 {
		orig = existing[0].OriginalByte
	}

	view := mdbutil.CreateBitView(&word)
	view.Write(trapInstruction, 0, mdbutil.BitsPerByte)
	if err := p.PokeWord(addr, word); err != nil {
		return nil, err
	}

	bp := &Breakpoint{ID: s.nextID, Address: addr, Enabled: true, OriginalByte: orig, Pid: pid}
	s.nextID++
	s.byAddress[addr] = append(s.byAddress[addr], bp)
	return bp, nil
}

// At returns every breakpoint record at addr.
func (s *Store) At(addr uint64) []*Breakpoint {
	return s.byAddress[addr]
}

// AnyEnabledAt reports whether any breakpoint at addr is currently
// enabled.
func (s *Store) AnyEnabledAt(addr uint64) bool {
	for _, bp := range s.byAddress[addr] {
		if bp.Enabled {
			return true
		}
	}
	return false
}

// Disable restores the original byte at bp's address and marks it
// disabled, per spec.md §4.7 "Disable".
func (s *Store) Disable(p Poker, bp *Breakpoint) error {
	if !bp.Enabled {
		return nil
	}
	word, err := p.PeekWord(bp.Address)
	if err != nil {
		return err
	}
	mdbutil.CreateBitView(&word).Write(uint64(bp.OriginalByte), 0, mdbutil.BitsPerByte)
	if err := p.PokeWord(bp.Address, word); err != nil {
		return err
	}
	bp.Enabled = false
	return nil
}

// Enable re-patches 0xCC at bp's address using its saved original byte.
func (s *Store) Enable(p Poker, bp *Breakpoint) error {
	if bp.Enabled {
		return nil
	}
	word, err := p.PeekWord(bp.Address)
	if err != nil {
		return err
	}
	mdbutil.CreateBitView(&word).Write(trapInstruction, 0, mdbutil.BitsPerByte)
	if err := p.PokeWord(bp.Address, word); err != nil {
		return err
	}
	bp.Enabled = true
	return nil
}

// DisableAllAt disables every breakpoint record at addr, returning the
// ones that were enabled beforehand (so a caller can re-arm just those
// under the Persistent policy).
func (s *Store) DisableAllAt(p Poker, addr uint64) ([]*Breakpoint, error) {
	var disabled []*Breakpoint
	for _, bp := range s.byAddress[addr] {
		if !bp.Enabled {
			continue
		}
		if err := s.Disable(p, bp); err != nil {
			return disabled, err
		}
		disabled = append(disabled, bp)
	}
	return disabled, nil
}

// Remove deletes every breakpoint record with the given ID, restoring
// the original byte first if still enabled.
func (s *Store) Remove(p Poker, id int) error {
	found := false
	for addr, bps := range s.byAddress {
		kept := bps[:0]
		for _, bp := range bps {
			if bp.ID != id {
				kept = append(kept, bp)
				continue
			}
			found = true
			if bp.Enabled {
				if err := s.Disable(p, bp); err != nil {
					return err
				}
			}
		}
		if len(kept) == 0 {
			delete(s.byAddress, addr)
		} else {
			s.byAddress[addr] = kept
		}
	}
	if !found {
		return mdberr.WithName(mdberr.NoSuchBreakpoint, "id lookup failed")
	}
	return nil
}

// All returns every breakpoint currently tracked, ordered by address so
// listings are deterministic across runs despite map iteration order.
func (s *Store) All() []*Breakpoint {
	addrs := maps.Keys(s.byAddress)
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var out []*Breakpoint
	for _, addr := range addrs {
		out = append(out, s.byAddress[addr]...)
	}
	return out
}
