package dwarf

// Tag is a DW_TAG_* value identifying the kind of a debugging information
// entry. Only the tags mdb's resolver and line engine actually branch on
// are named; unrecognized tags simply pass through as their raw value.
type Tag uint64

const (
	TagArrayType       Tag = 0x01
	TagCompileUnit     Tag = 0x11
	TagLexicalBlock    Tag = 0x0b
	TagSubprogram      Tag = 0x2e
	TagVariable        Tag = 0x34
	TagFormalParameter Tag = 0x05
	TagBaseType        Tag = 0x24
	TagPointerType     Tag = 0x0f
)

// Attribute is a DW_AT_* value.
type Attribute uint64

const (
	AttrSibling       Attribute = 0x01
	AttrLocation      Attribute = 0x02
	AttrName          Attribute = 0x03
	AttrByteSize      Attribute = 0x0b
	AttrStmtList      Attribute = 0x10
	AttrLowpc         Attribute = 0x11
	AttrHighpc        Attribute = 0x12
	AttrLanguage      Attribute = 0x13
	AttrCompDir       Attribute = 0x1b
	AttrConstValue    Attribute = 0x1c
	AttrProducer      Attribute = 0x25
	AttrPrototyped    Attribute = 0x27
	AttrDeclFile      Attribute = 0x3a
	AttrDeclLine      Attribute = 0x3b
	AttrDeclColumn    Attribute = 0x39
	AttrType          Attribute = 0x49
	AttrRanges        Attribute = 0x55
)

// Form is a DW_FORM_* value identifying how an attribute's value is
// encoded in the byte stream.
type Form uint64

const (
	FormAddr         Form = 0x01
	FormBlock2       Form = 0x03
	FormBlock4       Form = 0x04
	FormData2        Form = 0x05
	FormData4        Form = 0x06
	FormData8        Form = 0x07
	FormString       Form = 0x08
	FormBlock        Form = 0x09
	FormBlock1       Form = 0x0a
	FormData1        Form = 0x0b
	FormFlag         Form = 0x0c
	FormSdata        Form = 0x0d
	FormStrp         Form = 0x0e
	FormUdata        Form = 0x0f
	FormRefAddr      Form = 0x10
	FormRef1         Form = 0x11
	FormRef2         Form = 0x12
	FormRef4         Form = 0x13
	FormRef8         Form = 0x14
	FormRefUdata     Form = 0x15
	FormIndirect     Form = 0x16
	FormSecOffset    Form = 0x17
	FormExprloc      Form = 0x18
	FormFlagPresent  Form = 0x19
	FormRefSig8      Form = 0x20

	// DWARF v5 forms, recognized but not decoded (§4.4: "implementation
	// may degrade to an error until v5 compilation units appear" -- mdb
	// only supports v4 units per spec.md §1 non-goals).
	FormStrx          Form = 0x1a
	FormAddrx         Form = 0x1b
	FormRefSup4       Form = 0x1c
	FormStrpSup       Form = 0x1d
	FormData16        Form = 0x1e
	FormLineStrp      Form = 0x1f
	FormImplicitConst Form = 0x21
	FormLoclistx      Form = 0x22
	FormRnglistx      Form = 0x23
	FormRefSup8       Form = 0x24
	FormStrx1         Form = 0x25
	FormStrx2         Form = 0x26
	FormStrx3         Form = 0x27
	FormStrx4         Form = 0x28
	FormAddrx1        Form = 0x29
	FormAddrx2        Form = 0x2a
	FormAddrx3        Form = 0x2b
	FormAddrx4        Form = 0x2c
)

// IsV5Only reports whether form belongs to the DWARF v5 form set that mdb
// recognizes but cannot decode (spec.md §4.4).
func (f Form) IsV5Only() bool {
	switch f {
	case FormStrx, FormAddrx, FormRefSup4, FormStrpSup, FormData16, FormLineStrp,
		FormImplicitConst, FormLoclistx, FormRnglistx, FormRefSup8,
		FormStrx1, FormStrx2, FormStrx3, FormStrx4,
		FormAddrx1, FormAddrx2, FormAddrx3, FormAddrx4:
		return true
	default:
		return false
	}
}
