package wbxml

import (
	"encoding/hex"
	"encoding/xml"
	"io"
)

// XMLTracer renders the event stream as indented textual XML while
// forwarding every event to the wrapped codepages. Opaque payloads are
// rendered as hex.
type XMLTracer struct {
	enc   *xml.Encoder
	pages []Codepage
	err   error
}

// NewXMLTracer wraps pages; pass Pages() to the parser.
func NewXMLTracer(w io.Writer, pages []Codepage, indent string) *XMLTracer {
	enc := xml.NewEncoder(w)
	enc.Indent("", indent)
	t := &XMLTracer{enc: enc}
	t.pages = make([]Codepage, len(pages))
	for i, page := range pages {
		t.pages[i] = &tracedPage{Codepage: page, t: t}
	}
	return t
}

// Pages returns the tracing wrappers, in the same order as given.
func (t *XMLTracer) Pages() []Codepage { return t.pages }

// Flush writes buffered XML and reports the first encoding error.
func (t *XMLTracer) Flush() error {
	if t.err != nil {
		return t.err
	}
	return t.enc.Flush()
}

func (t *XMLTracer) emit(tok xml.Token) {
	if t.err == nil {
		t.err = t.enc.EncodeToken(tok)
	}
}

type tracedPage struct {
	Codepage
	t *XMLTracer
}

func (p *tracedPage) element(tag uint8) xml.Name {
	return xml.Name{Local: TagName(p.Codepage, tag)}
}

func (p *tracedPage) OnTagStart(s Scope, tag uint8, hasContent bool) error {
	p.t.emit(xml.StartElement{Name: p.element(tag)})
	return p.Codepage.OnTagStart(s, tag, hasContent)
}

func (p *tracedPage) OnTagEnd(s Scope, tag uint8) error {
	p.t.emit(xml.EndElement{Name: p.element(tag)})
	return p.Codepage.OnTagEnd(s, tag)
}

func (p *tracedPage) OnStringData(s Scope, tag uint8, value string) error {
	p.t.emit(xml.CharData(value))
	return p.Codepage.OnStringData(s, tag, value)
}

func (p *tracedPage) OnOpaqueData(s Scope, tag uint8, chunk []byte) error {
	p.t.emit(xml.CharData(hex.EncodeToString(chunk)))
	return p.Codepage.OnOpaqueData(s, tag, chunk)
}
