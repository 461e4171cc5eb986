package content

import (
	"slices"
	"strconv"
	"strings"

	"github.com/danmuck/wbxml/internal/protocol"
	"github.com/danmuck/wbxml/internal/protocol/wbxml"
)

// parseState is the in-progress object of one File or Folder element.
type parseState struct {
	file   *File
	folder *Folder
	obj    *Object
	depth  int // stack depth of the object element

	body      bool
	bodyEnded bool

	extName   string
	extValues []string
	pending   []Extension
}

// Codepage decodes File and Folder elements and hands them to a
// ContentHandler. It keeps per-object state, so one instance serves one
// parse at a time.
type Codepage struct {
	wbxml.BasePage
	handler ContentHandler
	st      parseState
}

var _ wbxml.Codepage = (*Codepage)(nil)

// NewCodepage delivers decoded objects to h.
func NewCodepage(h ContentHandler) *Codepage {
	return &Codepage{
		BasePage: wbxml.BasePage{PageName: PageName, First: TagA, Names: tagNames},
		handler:  h,
	}
}

// Reset drops any in-progress object left behind by an aborted parse.
func (c *Codepage) Reset() { c.st = parseState{} }

func (c *Codepage) misplaced(s wbxml.Scope, tag uint8, where string) error {
	return protocol.Protocolf(s.Offset(), protocol.ErrMisplacedTag, "%s %s", c.TagName(tag), where)
}

// inObject reports whether the in-progress object's element is still open
// above the current tag.
func (c *Codepage) inObject(s wbxml.Scope) bool {
	return c.st.obj != nil && s.Depth() > c.st.depth
}

// parentIs reports whether the parent element is one of tags and was
// opened on the same codepage as the current one.
func parentIs(s wbxml.Scope, tags ...uint8) bool {
	if s.AncestorPage(1) != s.AncestorPage(0) {
		return false
	}
	return slices.Contains(tags, s.Parent())
}

func (c *Codepage) OnTagStart(s wbxml.Scope, tag uint8, hasContent bool) error {
	if err := c.BasePage.OnTagStart(s, tag, hasContent); err != nil {
		return err
	}

	switch {
	case tag == TagFile || tag == TagFolder:
		if c.inObject(s) {
			return c.misplaced(s, tag, "inside another object")
		}
		c.st = parseState{depth: s.Depth()}
		if tag == TagFile {
			c.st.file = &File{}
			c.st.obj = &c.st.file.Object
		} else {
			c.st.folder = &Folder{}
			c.st.obj = &c.st.folder.Object
		}

	case isAttributeFlag(tag):
		if !c.inObject(s) || !parentIs(s, TagAttributes) {
			return c.misplaced(s, tag, "outside Attributes")
		}
		c.st.obj.attributes.set(tag)

	case tag == TagXNam || tag == TagXVal:
		if !c.inObject(s) || !parentIs(s, TagExt) {
			return c.misplaced(s, tag, "outside Ext")
		}

	case tag == TagCTType || tag == TagSize || tag == TagBody:
		if c.st.file == nil || !c.inObject(s) || !parentIs(s, TagFile) {
			return c.misplaced(s, tag, "outside File")
		}
		if c.st.body {
			return c.misplaced(s, tag, "after Body")
		}
		if tag == TagBody {
			c.st.body = true
			c.attachExtensions()
			return c.handler.OnFileBegin(c.st.file, true)
		}

	default:
		if !c.inObject(s) || !parentIs(s, TagFile, TagFolder) {
			return c.misplaced(s, tag, "outside File or Folder")
		}
		if c.st.body {
			return c.misplaced(s, tag, "after Body")
		}
		switch tag {
		case TagAttributes:
			c.st.obj.attributes = Attributes{}
			c.st.obj.set |= FieldAttributes
		case TagExt:
			c.st.extName = ""
			c.st.extValues = nil
		}
	}
	return nil
}

func (c *Codepage) OnTagEnd(s wbxml.Scope, tag uint8) error {
	if err := c.BasePage.OnTagEnd(s, tag); err != nil {
		return err
	}

	switch tag {
	case TagFile:
		f, body := c.st.file, c.st.body
		c.attachExtensions()
		c.st = parseState{}
		if f == nil || body {
			return nil
		}
		if err := c.handler.OnFileBegin(f, false); err != nil {
			return err
		}
		return c.handler.OnFileEnd(f, true)

	case TagFolder:
		d := c.st.folder
		c.attachExtensions()
		c.st = parseState{}
		if d == nil {
			return nil
		}
		return c.handler.OnFolder(d)

	case TagBody:
		if c.st.bodyEnded {
			return nil
		}
		c.st.bodyEnded = true
		return c.handler.OnFileEnd(c.st.file, true)

	case TagExt:
		if c.st.extName != "" && len(c.st.extValues) > 0 {
			c.st.pending = append(c.st.pending, Extension{Name: c.st.extName, Values: c.st.extValues})
		} else {
			s.Logger().Debug().
				Str("name", c.st.extName).
				Int("values", len(c.st.extValues)).
				Msg("dropping incomplete extension")
		}
		c.st.extName = ""
		c.st.extValues = nil
	}
	return nil
}

func (c *Codepage) OnStringData(s wbxml.Scope, tag uint8, value string) error {
	if !c.inObject(s) {
		return c.BasePage.OnStringData(s, tag, value)
	}

	obj := c.st.obj
	switch tag {
	case TagName:
		obj.SetName(value)
	case TagRole:
		obj.SetRole(value)
	case TagCreated, TagModified, TagAccessed:
		d, err := ParseDateTime(value)
		if err != nil {
			return protocol.Protocolf(s.Offset(), protocol.ErrInvalidValue, "%s: %v", c.TagName(tag), err)
		}
		switch tag {
		case TagCreated:
			obj.SetCreated(d)
		case TagModified:
			obj.SetModified(d)
		default:
			obj.SetAccessed(d)
		}
	case TagCTType:
		c.st.file.SetContentType(value)
	case TagSize:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || n < 0 {
			return protocol.Protocolf(s.Offset(), protocol.ErrInvalidValue, "Size %q", value)
		}
		c.st.file.size = n
		c.st.file.set |= FieldSize
	case TagXNam:
		c.st.extName = value
	case TagXVal:
		c.st.extValues = append(c.st.extValues, value)
	case TagBody:
		return c.handler.OnFileData(c.st.file, []byte(value))
	default:
		return c.BasePage.OnStringData(s, tag, value)
	}
	return nil
}

func (c *Codepage) OnOpaqueData(s wbxml.Scope, tag uint8, chunk []byte) error {
	if tag != TagBody || !c.inObject(s) || c.st.file == nil {
		return c.BasePage.OnOpaqueData(s, tag, chunk)
	}
	return c.handler.OnFileData(c.st.file, chunk)
}

func (c *Codepage) OnOpaqueDataEnd(s wbxml.Scope, tag uint8, commit bool) error {
	if err := c.BasePage.OnOpaqueDataEnd(s, tag, commit); err != nil {
		return err
	}
	if tag != TagBody || commit || c.st.file == nil || c.st.bodyEnded {
		return nil
	}
	c.st.bodyEnded = true
	return c.handler.OnFileEnd(c.st.file, false)
}

func (c *Codepage) attachExtensions() {
	if c.st.obj == nil || len(c.st.pending) == 0 {
		return
	}
	c.st.obj.Extensions = append(c.st.obj.Extensions, c.st.pending...)
	c.st.pending = nil
}
