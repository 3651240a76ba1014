// Package mdberr defines the closed error taxonomy shared by every decoder
// in mdb. Values are non-allocating at the point of failure: a Kind plus a
// small set of scalar fields, formatted into a string only when the error is
// displayed or logged.
package mdberr

import "fmt"

// Kind identifies one of the closed set of failure modes a parser or loader
// can report. Kind values never change meaning once assigned; new failure
// modes get new Kinds, never reused ones.
type Kind int

const (
	// BadUnsignedLEB128Encoding is returned when decoding a ULEB128 value
	// would require a shift beyond 63 bits without terminating.
	BadUnsignedLEB128Encoding Kind = iota
	// BadSignedLEB128Encoding is the signed counterpart of
	// BadUnsignedLEB128Encoding.
	BadSignedLEB128Encoding
	// DwarfSectionNotFound is returned when a required DWARF section is
	// absent from the object image.
	DwarfSectionNotFound
	// DwarfSectionNotRecognized is returned when a section name does not
	// belong to the closed set of DWARF section identifiers.
	DwarfSectionNotRecognized
	// EOFNotExpected is returned when a bounded read would read past the
	// end of the underlying buffer.
	EOFNotExpected
	// ELFMagicNotFound is returned when the leading four bytes of an image
	// do not match the ELF magic number.
	ELFMagicNotFound
	// SymbolTableMalformed is returned when a symbol table's entry size
	// does not match the fixed ELF64 symbol record size.
	SymbolTableMalformed
	// SectionNotFound is returned when a named ELF section is absent.
	SectionNotFound
	// ReaderOutOfBounds is returned when a non-consuming reader seek would
	// land outside the buffer.
	ReaderOutOfBounds
	// AttributeParseError is returned when an attribute form is
	// unrecognized or its encoded value is corrupt.
	AttributeParseError
	// UTF8Error is returned when a null-terminated string contains
	// invalid UTF-8.
	UTF8Error
	// ErroneousAddressSize is returned when a compilation unit reports a
	// pointer width other than 4 or 8, or when an unsigned read is asked
	// for a width outside {1,2,4,8}.
	ErroneousAddressSize
	// FileOpenError is returned when the source binary or a source file
	// cannot be opened.
	FileOpenError
	// FileReadError is returned when reading an opened file fails.
	FileReadError
	// ProcessLaunchError is returned when starting and attaching to the
	// tracee fails.
	ProcessLaunchError
	// PtraceRequestError is returned when a ptrace(2) request (peek,
	// poke, get/set regs, cont, single-step) fails.
	PtraceRequestError
	// WaitError is returned when waitpid(2) fails.
	WaitError
	// UnexpectedWaitStatus is returned when the tracee stops in a way
	// the caller did not expect (e.g. anything but SIGTRAP after a
	// single-step).
	UnexpectedWaitStatus
	// NoSuchBreakpoint is returned when a breakpoint operation names a
	// breakpoint ID with no breakpoint record.
	NoSuchBreakpoint
	// FunctionNotFound is returned when a symbol or pubnames lookup by
	// name fails to resolve an address.
	FunctionNotFound
	// SourceLocationNotFound is returned when no line-table row matches
	// a requested (file, line) pair.
	SourceLocationNotFound
)

var kindText = map[Kind]string{
	BadUnsignedLEB128Encoding: "bad unsigned LEB128 encoding",
	BadSignedLEB128Encoding:   "bad signed LEB128 encoding",
	DwarfSectionNotFound:      "DWARF section not found",
	DwarfSectionNotRecognized: "DWARF section not recognized",
	EOFNotExpected:            "unexpected end of buffer",
	ELFMagicNotFound:          "ELF magic not found",
	SymbolTableMalformed:      "symbol table malformed",
	SectionNotFound:           "section not found",
	ReaderOutOfBounds:         "reader seek out of bounds",
	AttributeParseError:       "attribute parse error",
	UTF8Error:                 "invalid UTF-8",
	ErroneousAddressSize:      "erroneous address size",
	FileOpenError:             "file open error",
	FileReadError:             "file read error",
	ProcessLaunchError:        "process launch error",
	PtraceRequestError:        "ptrace request error",
	WaitError:                 "wait error",
	UnexpectedWaitStatus:      "unexpected wait status",
	NoSuchBreakpoint:          "no such breakpoint",
	FunctionNotFound:          "function not found",
	SourceLocationNotFound:    "source location not found",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return "unknown error"
}

// Error is the concrete error value returned by mdb's decoders. It carries
// the Kind plus whatever scalar context that Kind requires (a byte
// position, a section name, a size) without allocating strings until Error()
// is called.
type Error struct {
	Kind Kind

	// Pos holds a byte offset for LEB128 and EOF-style errors.
	Pos int
	// Name holds a section, symbol, or file name for lookup-style errors.
	Name string
	// Size holds a size in bytes for malformed-size errors.
	Size int
	// ValidUpTo and ExtraLen describe a UTF8Error per utf8.DecodeRune's
	// contract: the longest valid prefix length and a hint about how many
	// bytes form the offending sequence.
	ValidUpTo int
	ExtraLen  int
	// Err wraps an underlying OS or I/O error for FileOpenError /
	// FileReadError.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case BadUnsignedLEB128Encoding:
		return fmt.Sprintf("bad unsigned LEB128 encoding at byte offset %d", e.Pos)
	case BadSignedLEB128Encoding:
		return fmt.Sprintf("bad signed LEB128 encoding at byte offset %d", e.Pos)
	case DwarfSectionNotFound:
		return fmt.Sprintf("DWARF section not found: %s", e.Name)
	case DwarfSectionNotRecognized:
		return fmt.Sprintf("DWARF section name not recognized: %s", e.Name)
	case EOFNotExpected:
		return fmt.Sprintf("unexpected end of buffer at offset %d", e.Pos)
	case ELFMagicNotFound:
		return "ELF magic not found"
	case SymbolTableMalformed:
		return fmt.Sprintf("symbol table entry size %d does not match expected layout", e.Size)
	case SectionNotFound:
		return fmt.Sprintf("section not found: %s", e.Name)
	case ReaderOutOfBounds:
		return fmt.Sprintf("reader seek out of bounds at offset %d", e.Pos)
	case AttributeParseError:
		return fmt.Sprintf("attribute parse error: %s", e.Name)
	case UTF8Error:
		return fmt.Sprintf("invalid UTF-8 (valid up to %d, error length %d)", e.ValidUpTo, e.ExtraLen)
	case ErroneousAddressSize:
		return fmt.Sprintf("erroneous address size: %d", e.Size)
	case FileOpenError:
		return fmt.Sprintf("failed to open %s: %v", e.Name, e.Err)
	case FileReadError:
		return fmt.Sprintf("failed to read %s: %v", e.Name, e.Err)
	case ProcessLaunchError:
		return fmt.Sprintf("failed to launch %s: %v", e.Name, e.Err)
	case PtraceRequestError:
		return fmt.Sprintf("ptrace request failed: %v", e.Err)
	case WaitError:
		return fmt.Sprintf("waitpid failed: %v", e.Err)
	case UnexpectedWaitStatus:
		return fmt.Sprintf("unexpected wait status: %s", e.Name)
	case NoSuchBreakpoint:
		return fmt.Sprintf("no such breakpoint: %s", e.Name)
	case FunctionNotFound:
		return fmt.Sprintf("function not found: %s", e.Name)
	case SourceLocationNotFound:
		return fmt.Sprintf("source location not found: %s", e.Name)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, satisfying
// errors.Is without requiring field-by-field equality.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs a bare Error of the given Kind with no extra context.
func New(kind Kind) *Error { return &Error{Kind: kind} }

// AtPos constructs an Error carrying a byte offset (LEB128 / EOF / reader
// bounds failures).
func AtPos(kind Kind, pos int) *Error { return &Error{Kind: kind, Pos: pos} }

// WithName constructs an Error carrying a name (section/symbol/file lookup
// failures).
func WithName(kind Kind, name string) *Error { return &Error{Kind: kind, Name: name} }

// WithSize constructs an Error carrying a size (malformed size / address
// width failures).
func WithSize(kind Kind, size int) *Error { return &Error{Kind: kind, Size: size} }

// Wrap constructs a FileOpenError/FileReadError carrying the underlying OS
// error.
func Wrap(kind Kind, name string, err error) *Error {
	return &Error{Kind: kind, Name: name, Err: err}
}

// UTF8 constructs a UTF8Error with the decode-failure details.
func UTF8(validUpTo, extraLen int) *Error {
	return &Error{Kind: UTF8Error, ValidUpTo: validUpTo, ExtraLen: extraLen}
}

// Sentinels usable with errors.Is(err, mdberr.ErrELFMagicNotFound) etc,
// covering the Kinds that callers most commonly branch on.
var (
	ErrELFMagicNotFound     = New(ELFMagicNotFound)
	ErrEOFNotExpected       = New(EOFNotExpected)
	ErrSymbolTableMalformed = New(SymbolTableMalformed)
)
