package wire

import (
	"fmt"
	"io"

	"github.com/danmuck/wbxml/internal/protocol"
)

// maxMultiByteLen is the encoded size of the largest uint64.
const maxMultiByteLen = 10

// AppendMultiByteInt appends the mb_u_int encoding of v to dst. Zero encodes
// as a single zero byte.
func AppendMultiByteInt(dst []byte, v uint64) []byte {
	var buf [maxMultiByteLen]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7F)
	v >>= 7
	for v != 0 {
		i--
		buf[i] = 0x80 | byte(v&0x7F)
		v >>= 7
	}
	return append(dst, buf[i:]...)
}

// WriteMultiByteInt writes v as an mb_u_int.
func WriteMultiByteInt(w io.Writer, v uint64) error {
	var buf [maxMultiByteLen]byte
	return writeAll(w, "write multi-byte integer", AppendMultiByteInt(buf[:0], v))
}

// WriteInlineString writes STR_I, the UTF-8 bytes of s and the terminator.
func WriteInlineString(w io.Writer, s string) error {
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, TokenInlineString)
	buf = append(buf, s...)
	buf = append(buf, 0x00)
	return writeAll(w, "write inline string", buf)
}

// WriteOpaqueDataBegin writes OPAQUE and the payload length. Exactly length
// bytes must follow through WriteOpaqueData.
func WriteOpaqueDataBegin(w io.Writer, length uint64) error {
	buf := make([]byte, 0, 1+maxMultiByteLen)
	buf = append(buf, TokenOpaque)
	buf = AppendMultiByteInt(buf, length)
	return writeAll(w, "write opaque header", buf)
}

// WriteOpaqueData writes raw payload bytes.
func WriteOpaqueData(w io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	return writeAll(w, "write opaque data", p)
}

// WriteTag writes one tag byte.
func WriteTag(w io.Writer, id byte, hasAttributes, hasContent bool) error {
	if id > TagIDMask {
		return fmt.Errorf("wire: tag id 0x%02x exceeds 6 bits", id)
	}
	return writeAll(w, "write tag", []byte{TagByte(id, hasAttributes, hasContent)})
}

// WriteTagEnd writes END.
func WriteTagEnd(w io.Writer) error {
	return writeAll(w, "write end", []byte{TokenEnd})
}

// WriteSwitchPage writes SWITCH_PAGE and the page index.
func WriteSwitchPage(w io.Writer, page byte) error {
	return writeAll(w, "write switch page", []byte{TokenSwitchPage, page})
}

// WriteHeader writes version, string table index 0, charset and a string
// table holding docID (or an empty table when docID is empty).
func WriteHeader(w io.Writer, version byte, charset uint64, docID string) error {
	buf := make([]byte, 0, 4+maxMultiByteLen*2+len(docID))
	buf = append(buf, version)
	buf = AppendMultiByteInt(buf, 0)
	buf = AppendMultiByteInt(buf, charset)
	buf = AppendMultiByteInt(buf, uint64(len(docID)))
	buf = append(buf, docID...)
	return writeAll(w, "write header", buf)
}

func writeAll(w io.Writer, op string, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return &protocol.IOError{Op: op, Offset: -1, Err: err}
	}
	if n != len(p) {
		return &protocol.IOError{Op: op, Offset: -1, Err: io.ErrShortWrite}
	}
	return nil
}
