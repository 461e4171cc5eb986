package wire

import (
	"bufio"
	"errors"
	"io"

	"github.com/danmuck/wbxml/internal/protocol"
)

type byteSource interface {
	io.Reader
	io.ByteReader
}

// Reader decodes primitives from a byte stream and tracks the offset.
type Reader struct {
	src byteSource
	off int64
}

// NewReader wraps r, buffering it unless it already reads single bytes.
func NewReader(r io.Reader) *Reader {
	src, ok := r.(byteSource)
	if !ok {
		src = bufio.NewReader(r)
	}
	return &Reader{src: src}
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.off }

// NextToken reads the next token byte. It returns bare io.EOF only when the
// stream ends cleanly between tokens.
func (r *Reader) NextToken() (byte, error) {
	b, err := r.src.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, &protocol.IOError{Op: "read token", Offset: r.off, Err: err}
	}
	r.off++
	return b, nil
}

// ReadByte reads one byte that the grammar requires to be present.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.src.ReadByte()
	if err != nil {
		return 0, r.fail("read byte", err)
	}
	r.off++
	return b, nil
}

// ReadMultiByteInt decodes an mb_u_int: 7-bit groups, most significant
// first, continuation flag 0x80 on every byte but the last.
func (r *Reader) ReadMultiByteInt() (uint64, error) {
	var v uint64
	for {
		b, err := r.src.ReadByte()
		if err != nil {
			return 0, r.fail("read multi-byte integer", err)
		}
		r.off++
		if v>>57 != 0 {
			return 0, protocol.Protocolf(r.off-1, protocol.ErrIntegerOverflow, "byte 0x%02x", b)
		}
		v = v<<7 | uint64(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// ReadInlineString reads a 0x00-terminated UTF-8 string into buf[:0] and
// returns the filled slice, without the terminator. buf is grown as needed
// so callers can keep reusing it.
func (r *Reader) ReadInlineString(buf []byte) ([]byte, error) {
	buf = buf[:0]
	for {
		b, err := r.src.ReadByte()
		if err != nil {
			return buf, r.fail("read inline string", err)
		}
		r.off++
		if b == 0 {
			return buf, nil
		}
		buf = append(buf, b)
	}
}

// ReadFull fills p or reports, under op, how many bytes arrived before the
// stream ended.
func (r *Reader) ReadFull(op string, p []byte) (int, error) {
	n, err := io.ReadFull(r.src, p)
	r.off += int64(n)
	if err != nil {
		return n, r.fail(op, err)
	}
	return n, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n uint64) error {
	copied, err := io.CopyN(io.Discard, r.src, int64(n))
	r.off += copied
	if err != nil {
		return r.fail("skip", err)
	}
	return nil
}

// ReadHeader reads the document header without validating it.
func (r *Reader) ReadHeader() (Header, error) {
	var h Header
	var err error

	if h.Version, err = r.ReadByte(); err != nil {
		return h, err
	}
	if h.StringTableIndex, err = r.ReadMultiByteInt(); err != nil {
		return h, err
	}
	if h.Charset, err = r.ReadMultiByteInt(); err != nil {
		return h, err
	}
	h.StringTable, err = r.ReadStringTable()
	return h, err
}

// ReadStringTable reads the length-prefixed string table that ends the
// header. An oversized table is skipped and reported as empty.
func (r *Reader) ReadStringTable() ([]byte, error) {
	length, err := r.ReadMultiByteInt()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	if length > 1<<20 {
		// Only a document ID ever lives in the table; keep it out of memory.
		return nil, r.Skip(length)
	}
	table := make([]byte, length)
	if _, err := r.ReadFull("read string table", table); err != nil {
		return nil, err
	}
	return table, nil
}

func (r *Reader) fail(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return protocol.Truncated(op, r.off)
	}
	return &protocol.IOError{Op: op, Offset: r.off, Err: err}
}
