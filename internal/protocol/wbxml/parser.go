// Package wbxml drives single-pass WBXML parsing and writing and defines
// the codepage contract that schema handlers implement.
package wbxml

import (
	"io"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/danmuck/wbxml/internal/protocol"
	"github.com/danmuck/wbxml/internal/protocol/wire"
)

// openTag is one entry of the open-element stack.
type openTag struct {
	tag  uint8
	page int
}

// Parser dispatches the events of one document at a time to its codepages.
// A Parser is not safe for concurrent use; each Parse call starts from a
// clean stack.
type Parser struct {
	pages []Codepage
	opts  options
	log   zerolog.Logger

	r      *wire.Reader
	header wire.Header
	page   int
	stack  []openTag

	strBuf []byte
	chunk  []byte
}

// NewParser builds a parser over pages, indexed by SWITCH_PAGE value.
func NewParser(pages []Codepage, opts ...Option) *Parser {
	o := applyOptions(opts)
	return &Parser{
		pages: pages,
		opts:  o,
		log:   o.logger,
		chunk: make([]byte, o.chunkSize),
	}
}

// Parse reads one document from r. Any error leaves the document invalid;
// codepage state built so far must be discarded by the caller.
func (p *Parser) Parse(r io.Reader) error {
	p.r = wire.NewReader(r)
	p.header = wire.Header{}
	p.page = p.opts.initialPage
	p.stack = p.stack[:0]
	p.strBuf = p.strBuf[:0]

	err := p.parse()
	if err != nil {
		p.log.Debug().Err(err).Int64("offset", p.r.Offset()).Msg("parse failed")
		p.stack = p.stack[:0]
	}
	return err
}

// Header returns the header of the last parsed document.
func (p *Parser) Header() wire.Header { return p.header }

// BytesRead returns the bytes consumed by the last Parse call.
func (p *Parser) BytesRead() int64 {
	if p.r == nil {
		return 0
	}
	return p.r.Offset()
}

func (p *Parser) Depth() int { return len(p.stack) }

func (p *Parser) Ancestor(depth int) uint8 {
	i := len(p.stack) - 1 - depth
	if depth < 0 || i < 0 {
		return 0
	}
	return p.stack[i].tag
}

func (p *Parser) Parent() uint8 { return p.Ancestor(1) }

func (p *Parser) AncestorPage(depth int) int {
	i := len(p.stack) - 1 - depth
	if depth < 0 || i < 0 {
		return -1
	}
	return p.stack[i].page
}

func (p *Parser) Offset() int64 {
	if p.r == nil {
		return 0
	}
	return p.r.Offset()
}

func (p *Parser) Logger() *zerolog.Logger { return &p.log }

func (p *Parser) parse() error {
	if p.page < 0 || p.page >= len(p.pages) {
		return protocol.Protocolf(0, protocol.ErrUnknownCodepage, "initial page %d of %d", p.page, len(p.pages))
	}

	if err := p.readHeader(); err != nil {
		return err
	}
	p.log.Trace().Int("string_table", len(p.header.StringTable)).Msg("header accepted")

	for {
		b, err := p.r.NextToken()
		if err == io.EOF {
			if len(p.stack) != 0 {
				return protocol.Truncated("close elements", p.r.Offset())
			}
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.token(b); err != nil {
			return err
		}
	}
}

// readHeader checks each header field as soon as it is read, so a foreign
// document is rejected before its remaining bytes are trusted.
func (p *Parser) readHeader() error {
	h := &p.header
	var err error
	if h.Version, err = p.r.ReadByte(); err != nil {
		return err
	}
	if h.Version != wire.Version12 {
		return protocol.Protocolf(0, protocol.ErrUnsupportedVersion, "version 0x%02x", h.Version)
	}
	if h.StringTableIndex, err = p.r.ReadMultiByteInt(); err != nil {
		return err
	}
	start := p.r.Offset()
	if h.Charset, err = p.r.ReadMultiByteInt(); err != nil {
		return err
	}
	if h.Charset != wire.CharsetUTF8 {
		return protocol.Protocolf(start, protocol.ErrUnsupportedCharset, "charset %d", h.Charset)
	}
	h.StringTable, err = p.r.ReadStringTable()
	return err
}

func (p *Parser) token(b byte) error {
	switch b {
	case wire.TokenSwitchPage:
		return p.switchPage()
	case wire.TokenEnd:
		if len(p.stack) == 0 {
			return protocol.Protocolf(p.r.Offset()-1, protocol.ErrUnbalancedEnd, "depth 0")
		}
		return p.closeTop()
	case wire.TokenInlineString:
		return p.inlineString()
	case wire.TokenOpaque:
		return p.opaque()
	case wire.TokenEntity, wire.TokenLiteral, wire.TokenStringTableRef:
		v, err := p.r.ReadMultiByteInt()
		if err != nil {
			return err
		}
		p.log.Trace().Uint8("token", b).Uint64("value", v).Msg("ignored token")
		return nil
	default:
		return p.openTag(b)
	}
}

func (p *Parser) switchPage() error {
	index, err := p.r.ReadByte()
	if err != nil {
		return err
	}
	if int(index) >= len(p.pages) {
		return protocol.Protocolf(p.r.Offset()-1, protocol.ErrUnknownCodepage, "page %d of %d", index, len(p.pages))
	}
	p.page = int(index)
	p.log.Trace().Str("page", p.pages[p.page].Name()).Msg("switch page")
	return nil
}

func (p *Parser) openTag(b byte) error {
	tag, hasAttributes, hasContent := wire.SplitTag(b)
	page := p.pages[p.page]
	if hasAttributes {
		return protocol.Protocolf(p.r.Offset()-1, protocol.ErrAttributesUnsupported, "tag byte 0x%02x", b)
	}
	if !HasTag(page, tag) {
		return protocol.Protocolf(p.r.Offset()-1, protocol.ErrUnknownTag, "tag 0x%02x on page %q", tag, page.Name())
	}

	p.stack = append(p.stack, openTag{tag: tag, page: p.page})
	if err := page.OnTagStart(p, tag, hasContent); err != nil {
		return err
	}
	if !hasContent {
		return p.closeTop()
	}
	return nil
}

// closeTop runs OnTagEnd with the element still on the stack, then pops it.
func (p *Parser) closeTop() error {
	top := p.stack[len(p.stack)-1]
	err := p.pages[top.page].OnTagEnd(p, top.tag)
	p.stack = p.stack[:len(p.stack)-1]
	return err
}

func (p *Parser) current() (openTag, error) {
	if len(p.stack) == 0 {
		return openTag{}, protocol.Protocolf(p.r.Offset()-1, protocol.ErrDataOutsideElement, "depth 0")
	}
	return p.stack[len(p.stack)-1], nil
}

func (p *Parser) inlineString() error {
	top, err := p.current()
	if err != nil {
		return err
	}
	start := p.r.Offset()
	p.strBuf, err = p.r.ReadInlineString(p.strBuf)
	if err != nil {
		return err
	}
	if !utf8.Valid(p.strBuf) {
		return protocol.Protocolf(start, protocol.ErrInvalidValue, "inline string is not UTF-8")
	}
	return p.pages[top.page].OnStringData(p, top.tag, string(p.strBuf))
}

func (p *Parser) opaque() error {
	top, err := p.current()
	if err != nil {
		return err
	}
	length, err := p.r.ReadMultiByteInt()
	if err != nil {
		return err
	}
	page := p.pages[top.page]
	if err := page.OnOpaqueDataBegin(p, top.tag, length); err != nil {
		return err
	}

	for remaining := length; remaining > 0; {
		n := uint64(len(p.chunk))
		if remaining < n {
			n = remaining
		}
		if _, err := p.r.ReadFull("read opaque data", p.chunk[:n]); err != nil {
			if endErr := page.OnOpaqueDataEnd(p, top.tag, false); endErr != nil {
				p.log.Warn().Err(endErr).Msg("opaque abort handler failed")
			}
			return err
		}
		if err := page.OnOpaqueData(p, top.tag, p.chunk[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return page.OnOpaqueDataEnd(p, top.tag, true)
}
