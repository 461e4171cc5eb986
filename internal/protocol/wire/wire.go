// Package wire holds the byte-level WBXML primitives: header, multi-byte
// integers, inline strings, opaque data and tag bytes. Nothing here keeps
// parse state beyond a byte offset.
package wire

// Global tokens.
const (
	TokenSwitchPage     byte = 0x00
	TokenEnd            byte = 0x01
	TokenEntity         byte = 0x02
	TokenInlineString   byte = 0x03
	TokenLiteral        byte = 0x04
	TokenStringTableRef byte = 0x83
	TokenOpaque         byte = 0xC3
)

// Tag byte layout.
const (
	TagIDMask        byte = 0x3F
	TagContentBit    byte = 0x40
	TagAttributesBit byte = 0x80
)

const (
	// Version12 is the only WBXML version accepted (1.2).
	Version12 byte = 0x02
	// CharsetUTF8 is the IANA MIBenum of UTF-8.
	CharsetUTF8 uint64 = 106
)

// Header is the WBXML document header.
type Header struct {
	Version          byte
	StringTableIndex uint64
	Charset          uint64
	StringTable      []byte
}

// IsGlobal reports whether b is a reserved global token rather than a tag.
func IsGlobal(b byte) bool {
	switch b {
	case TokenSwitchPage, TokenEnd, TokenEntity, TokenInlineString,
		TokenLiteral, TokenStringTableRef, TokenOpaque:
		return true
	}
	return false
}

// TagByte composes a tag token.
func TagByte(id byte, hasAttributes, hasContent bool) byte {
	b := id & TagIDMask
	if hasContent {
		b |= TagContentBit
	}
	if hasAttributes {
		b |= TagAttributesBit
	}
	return b
}

// SplitTag decomposes a tag token.
func SplitTag(b byte) (id byte, hasAttributes, hasContent bool) {
	return b & TagIDMask, b&TagAttributesBit != 0, b&TagContentBit != 0
}
