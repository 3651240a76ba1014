package line

import (
	"github.com/theIDinside/mdb/pkg/bytereader"
)

// Row is one emitted line-matrix row (DWARF §6.2.2), in the field order
// spec.md's data model names.
type Row struct {
	Address       uint64
	OpIndex       uint8
	File          uint64
	Line          uint64
	Column        uint64
	IsStatement   bool
	BasicBlock    bool
	EndSequence   bool
	PrologueEnd   bool
	EpilogueBegin bool
	ISA           uint64
	Discriminator uint64
}

// extended sub-opcodes, DWARF §6.2.5.3.
const (
	extEndSequence     = 1
	extSetAddress      = 2
	extDefineFile      = 3
	extSetDiscriminator = 4
)

// standard opcodes, DWARF §6.2.5.2.
const (
	opCopy               = 1
	opAdvancePC          = 2
	opAdvanceLine        = 3
	opSetFile            = 4
	opSetColumn          = 5
	opNegateStatement    = 6
	opSetBasicBlock      = 7
	opConstAddPC         = 8
	opFixedAdvancePC     = 9
	opSetPrologueEnd     = 10
	opSetEpilogueBegin   = 11
	opSetISA             = 12
)

// state is the line-number state machine's registers (DWARF §6.2.2),
// reset to the header-derived defaults after every EndSequence.
type state struct {
	address       uint64
	opIndex       uint8
	file          uint64
	line          uint64
	column        uint64
	isStatement   bool
	basicBlock    bool
	endSequence   bool
	prologueEnd   bool
	epilogueBegin bool
	isa           uint64
	discriminator uint64
}

func initialState(h Header) state {
	return state{file: 1, line: 1, isStatement: h.DefaultIsStatement}
}

// saturatingAddLine applies a signed line delta without underflowing
// below zero or overflowing past the uint64 range; an SLEB128 delta on
// malformed input must never wrap, per spec.md §9.
func saturatingAddLine(line uint64, delta int64) uint64 {
	if delta < 0 {
		d := uint64(-delta)
		if d > line {
			return 0
		}
		return line - d
	}
	sum := line + uint64(delta)
	if sum < line {
		return ^uint64(0)
	}
	return sum
}

// Run executes the Line Number Program whose header is h, reading its
// instruction stream from debugLine[h.ProgramStart:h.UnitEnd], and
// returns every row the bytecode emits, per DWARF §6.2 and spec.md
// §4.5.
func Run(debugLine []byte, h Header, addressSize int) ([]Row, error) {
	r := bytereader.New(debugLine, 0)
	if err := r.Seek(h.ProgramStart); err != nil {
		return nil, err
	}

	var rows []Row
	st := initialState(h)

	emit := func() {
		rows = append(rows, Row{
			Address:       st.address,
			OpIndex:       st.opIndex,
			File:          st.file,
			Line:          st.line,
			Column:        st.column,
			IsStatement:   st.isStatement,
			BasicBlock:    st.basicBlock,
			EndSequence:   st.endSequence,
			PrologueEnd:   st.prologueEnd,
			EpilogueBegin: st.epilogueBegin,
			ISA:           st.isa,
			Discriminator: st.discriminator,
		})
	}
	clearRowFlags := func() {
		st.basicBlock = false
		st.prologueEnd = false
		st.epilogueBegin = false
		st.discriminator = 0
	}

	maxOps := uint64(h.MaxOpsPerInstruction)
	if maxOps == 0 {
		maxOps = 1
	}

	advance := func(operationAdvance uint64) {
		newAddr := uint64(st.opIndex) + operationAdvance
		st.address += uint64(h.MinInstLength) * (newAddr / maxOps)
		st.opIndex = uint8(newAddr % maxOps)
	}

	for r.Pos() < h.UnitEnd {
		opcode, err := r.ReadU8()
		if err != nil {
			return nil, err
		}

		switch {
		case opcode == 0:
			length, err := r.ReadULEB128()
			if err != nil {
				return nil, err
			}
			extStart := r.Pos()
			sub, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			switch sub {
			case extEndSequence:
				st.endSequence = true
				emit()
				st = initialState(h)
			case extSetAddress:
				addr, err := r.ReadAddress(addressSize)
				if err != nil {
					return nil, err
				}
				st.address = addr
				st.opIndex = 0
			case extDefineFile:
				name, err := r.ReadStr()
				if err != nil {
					return nil, err
				}
				dirIdx, err := r.ReadULEB128()
				if err != nil {
					return nil, err
				}
				modTime, err := r.ReadULEB128()
				if err != nil {
					return nil, err
				}
				flen, err := r.ReadULEB128()
				if err != nil {
					return nil, err
				}
				h.Files = append(h.Files, FileEntry{Name: name, DirIndex: dirIdx, ModTime: modTime, Length: flen})
			case extSetDiscriminator:
				disc, err := r.ReadULEB128()
				if err != nil {
					return nil, err
				}
				st.discriminator = disc
			}
			if err := r.Seek(extStart + int(length)); err != nil {
				return nil, err
			}

		case opcode < h.OpcodeBase:
			switch opcode {
			case opCopy:
				emit()
				clearRowFlags()
			case opAdvancePC:
				v, err := r.ReadULEB128()
				if err != nil {
					return nil, err
				}
				advance(v)
			case opAdvanceLine:
				v, err := r.ReadILEB128()
				if err != nil {
					return nil, err
				}
				st.line = saturatingAddLine(st.line, v)
			case opSetFile:
				v, err := r.ReadULEB128()
				if err != nil {
					return nil, err
				}
				st.file = v
			case opSetColumn:
				v, err := r.ReadULEB128()
				if err != nil {
					return nil, err
				}
				st.column = v
			case opNegateStatement:
				st.isStatement = !st.isStatement
			case opSetBasicBlock:
				st.basicBlock = true
			case opConstAddPC:
				adjusted := uint64(255 - h.OpcodeBase)
				advance(adjusted / uint64(h.LineRange))
			case opFixedAdvancePC:
				v, err := r.ReadU16()
				if err != nil {
					return nil, err
				}
				st.address += uint64(v)
				st.opIndex = 0
			case opSetPrologueEnd:
				st.prologueEnd = true
			case opSetEpilogueBegin:
				st.epilogueBegin = true
			case opSetISA:
				v, err := r.ReadULEB128()
				if err != nil {
					return nil, err
				}
				st.isa = v
			default:
				// Vendor-unknown standard opcode: skip its declared
				// operand count of ULEB128 args per the header's
				// standard_opcode_lengths table.
				nargs := h.StandardOpcodeLength[opcode-1]
				for i := uint8(0); i < nargs; i++ {
					if _, err := r.ReadULEB128(); err != nil {
						return nil, err
					}
				}
			}

		default:
			adjusted := uint64(opcode - h.OpcodeBase)
			operationAdvance := adjusted / uint64(h.LineRange)
			lineDelta := int64(h.LineBase) + int64(adjusted%uint64(h.LineRange))
			advance(operationAdvance)
			st.line = saturatingAddLine(st.line, lineDelta)
			emit()
			clearRowFlags()
		}
	}

	return rows, nil
}
