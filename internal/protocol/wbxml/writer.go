package wbxml

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/danmuck/wbxml/internal/protocol"
	"github.com/danmuck/wbxml/internal/protocol/wire"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Writer emits a WBXML document token by token. The nesting level is kept
// for trace indentation and to reject unbalanced END tokens.
type Writer struct {
	out   *countingWriter
	pages []Codepage
	log   zerolog.Logger

	page int
	open []openTag

	opaqueOpen bool
	opaqueLeft uint64
}

// NewWriter writes to w. pages resolves tag names and validates tag IDs;
// it may be nil, in which case tags are written unchecked.
func NewWriter(w io.Writer, pages []Codepage, opts ...Option) *Writer {
	o := applyOptions(opts)
	return &Writer{
		out:   &countingWriter{w: w},
		pages: pages,
		log:   o.logger,
		page:  o.initialPage,
	}
}

// Level is the number of currently open elements.
func (w *Writer) Level() int { return len(w.open) }

// BytesWritten counts bytes accepted by the underlying writer.
func (w *Writer) BytesWritten() int64 { return w.out.n }

// Page returns the index of the active codepage.
func (w *Writer) Page() int { return w.page }

// WriteHeader writes a WBXML 1.2 UTF-8 header with docID as the sole
// string table entry.
func (w *Writer) WriteHeader(docID string) error {
	return wire.WriteHeader(w.out, wire.Version12, wire.CharsetUTF8, docID)
}

// SwitchPage makes index the active codepage, emitting SWITCH_PAGE only if
// it differs from the current one.
func (w *Writer) SwitchPage(index int) error {
	if index < 0 || index > 0xFF || (w.pages != nil && index >= len(w.pages)) {
		return protocol.Protocolf(w.out.n, protocol.ErrUnknownCodepage, "page %d", index)
	}
	if index == w.page {
		return nil
	}
	if err := wire.WriteSwitchPage(w.out, byte(index)); err != nil {
		return err
	}
	w.page = index
	return nil
}

// StartTag opens an element whose content follows.
func (w *Writer) StartTag(tag uint8) error {
	if err := w.tag(tag, true); err != nil {
		return err
	}
	w.open = append(w.open, openTag{tag: tag, page: w.page})
	return nil
}

// EmptyTag writes a self-closing element.
func (w *Writer) EmptyTag(tag uint8) error {
	return w.tag(tag, false)
}

// StringTag writes <tag>value</tag> with value as an inline string.
func (w *Writer) StringTag(tag uint8, value string) error {
	if err := w.StartTag(tag); err != nil {
		return err
	}
	if err := w.InlineString(value); err != nil {
		return err
	}
	return w.EndTag()
}

// OpaqueTag writes <tag>data</tag> with data as one opaque block.
func (w *Writer) OpaqueTag(tag uint8, data []byte) error {
	if err := w.StartTag(tag); err != nil {
		return err
	}
	if err := w.OpaqueBegin(uint64(len(data))); err != nil {
		return err
	}
	if err := w.OpaqueData(data); err != nil {
		return err
	}
	return w.EndTag()
}

// InlineString writes string data inside the open element.
func (w *Writer) InlineString(value string) error {
	if err := w.requireOpen("string data"); err != nil {
		return err
	}
	w.trace().Str("value", value).Msg("string")
	return wire.WriteInlineString(w.out, value)
}

// OpaqueBegin declares an opaque block of length bytes inside the open
// element. Exactly length bytes must follow through OpaqueData.
func (w *Writer) OpaqueBegin(length uint64) error {
	if err := w.requireOpen("opaque data"); err != nil {
		return err
	}
	if err := wire.WriteOpaqueDataBegin(w.out, length); err != nil {
		return err
	}
	w.trace().Uint64("length", length).Msg("opaque")
	w.opaqueOpen = length > 0
	w.opaqueLeft = length
	return nil
}

// OpaqueData writes part of the declared opaque block.
func (w *Writer) OpaqueData(p []byte) error {
	if uint64(len(p)) > w.opaqueLeft {
		return fmt.Errorf("wbxml: opaque overrun: %d bytes written, %d declared remaining", len(p), w.opaqueLeft)
	}
	if err := wire.WriteOpaqueData(w.out, p); err != nil {
		return err
	}
	w.opaqueLeft -= uint64(len(p))
	if w.opaqueLeft == 0 {
		w.opaqueOpen = false
	}
	return nil
}

// EndTag closes the innermost open element.
func (w *Writer) EndTag() error {
	if len(w.open) == 0 {
		return fmt.Errorf("wbxml: end tag without open element")
	}
	if w.opaqueOpen {
		return fmt.Errorf("wbxml: end tag with %d opaque bytes outstanding", w.opaqueLeft)
	}
	top := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]
	w.trace().Str("tag", "/"+w.name(top.page, top.tag)).Msg("end")
	return wire.WriteTagEnd(w.out)
}

func (w *Writer) tag(tag uint8, hasContent bool) error {
	if w.opaqueOpen {
		return fmt.Errorf("wbxml: tag with %d opaque bytes outstanding", w.opaqueLeft)
	}
	if w.pages != nil {
		if w.page >= len(w.pages) {
			return protocol.Protocolf(w.out.n, protocol.ErrUnknownCodepage, "page %d", w.page)
		}
		if !HasTag(w.pages[w.page], tag) {
			return protocol.Protocolf(w.out.n, protocol.ErrUnknownTag, "tag 0x%02x on page %q", tag, w.pages[w.page].Name())
		}
	}
	w.trace().Str("tag", w.name(w.page, tag)).Bool("content", hasContent).Msg("start")
	return wire.WriteTag(w.out, tag, false, hasContent)
}

func (w *Writer) requireOpen(what string) error {
	if len(w.open) == 0 {
		return fmt.Errorf("wbxml: %s outside element", what)
	}
	if w.opaqueOpen {
		return fmt.Errorf("wbxml: %s with %d opaque bytes outstanding", what, w.opaqueLeft)
	}
	return nil
}

func (w *Writer) name(page int, tag uint8) string {
	if page >= len(w.pages) {
		return fmt.Sprintf("0x%02x", tag)
	}
	return TagName(w.pages[page], tag)
}

func (w *Writer) trace() *zerolog.Event {
	return w.log.Trace().Str("indent", strings.Repeat("  ", len(w.open)))
}
