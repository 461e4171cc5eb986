package wbxml

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Scope is the parser state a codepage may consult from inside a callback.
type Scope interface {
	// Depth is the number of open elements, the current one included.
	Depth() int
	// Ancestor returns the tag depth levels above the current element
	// (0 is the current element itself), or 0 when out of range.
	Ancestor(depth int) uint8
	// Parent is Ancestor(1).
	Parent() uint8
	// AncestorPage is the codepage index Ancestor(depth) was opened on,
	// or -1 when out of range.
	AncestorPage(depth int) int
	// Offset is the number of input bytes consumed so far.
	Offset() int64
	Logger() *zerolog.Logger
}

// Codepage is one tag vocabulary plus the handlers for its structural
// events. Tag IDs are page-local; TagNames()[0] names FirstTag().
//
// A non-nil error from any callback aborts the parse and is returned by
// Parser.Parse unchanged.
type Codepage interface {
	Name() string
	FirstTag() uint8
	TagNames() []string

	OnTagStart(s Scope, tag uint8, hasContent bool) error
	OnTagEnd(s Scope, tag uint8) error
	OnStringData(s Scope, tag uint8, value string) error
	OnOpaqueDataBegin(s Scope, tag uint8, length uint64) error
	OnOpaqueData(s Scope, tag uint8, chunk []byte) error
	OnOpaqueDataEnd(s Scope, tag uint8, commit bool) error
}

// HasTag reports whether tag falls inside the page's name table.
func HasTag(page Codepage, tag uint8) bool {
	i := int(tag) - int(page.FirstTag())
	return i >= 0 && i < len(page.TagNames())
}

// TagName resolves a tag for diagnostics.
func TagName(page Codepage, tag uint8) string {
	if page == nil || !HasTag(page, tag) {
		return fmt.Sprintf("<unknown:0x%02x>", tag)
	}
	return page.TagNames()[int(tag)-int(page.FirstTag())]
}

// BasePage implements Codepage with callbacks that only log. Concrete
// pages embed it and override the events they care about.
type BasePage struct {
	PageName string
	First    uint8
	Names    []string
}

func (b *BasePage) Name() string       { return b.PageName }
func (b *BasePage) FirstTag() uint8    { return b.First }
func (b *BasePage) TagNames() []string { return b.Names }

// TagName resolves tag within this page.
func (b *BasePage) TagName(tag uint8) string { return TagName(b, tag) }

func (b *BasePage) OnTagStart(s Scope, tag uint8, hasContent bool) error {
	s.Logger().Debug().
		Str("page", b.PageName).
		Str("tag", b.TagName(tag)).
		Bool("content", hasContent).
		Int("depth", s.Depth()).
		Msg("tag start")
	return nil
}

func (b *BasePage) OnTagEnd(s Scope, tag uint8) error {
	s.Logger().Debug().
		Str("page", b.PageName).
		Str("tag", b.TagName(tag)).
		Int("depth", s.Depth()).
		Msg("tag end")
	return nil
}

func (b *BasePage) OnStringData(s Scope, tag uint8, value string) error {
	s.Logger().Debug().
		Str("page", b.PageName).
		Str("tag", b.TagName(tag)).
		Str("value", value).
		Msg("string data")
	return nil
}

func (b *BasePage) OnOpaqueDataBegin(s Scope, tag uint8, length uint64) error {
	s.Logger().Debug().
		Str("page", b.PageName).
		Str("tag", b.TagName(tag)).
		Uint64("length", length).
		Msg("opaque begin")
	return nil
}

func (b *BasePage) OnOpaqueData(s Scope, tag uint8, chunk []byte) error {
	s.Logger().Trace().
		Str("page", b.PageName).
		Str("tag", b.TagName(tag)).
		Int("len", len(chunk)).
		Msg("opaque chunk")
	return nil
}

func (b *BasePage) OnOpaqueDataEnd(s Scope, tag uint8, commit bool) error {
	s.Logger().Debug().
		Str("page", b.PageName).
		Str("tag", b.TagName(tag)).
		Bool("commit", commit).
		Msg("opaque end")
	return nil
}
