package content

import (
	"fmt"
	"strconv"

	"github.com/danmuck/wbxml/internal/protocol/wbxml"
)

// Writer emits File and Folder elements through a wbxml.Writer. Files with
// a body are written in three steps: WriteFileBegin, any number of
// WriteFileData calls, then WriteFileEnd.
type Writer struct {
	w    *wbxml.Writer
	page int

	file     *File
	bodyOpen bool
}

// NewWriter writes through w, switching to codepage index page before
// each object.
func NewWriter(w *wbxml.Writer, page int) *Writer {
	return &Writer{w: w, page: page}
}

// WriteFolder writes d as one self-contained element.
func (cw *Writer) WriteFolder(d *Folder) error {
	if cw.file != nil {
		return fmt.Errorf("content: folder %q inside open file %q", d.name, cw.file.name)
	}
	if err := cw.w.SwitchPage(cw.page); err != nil {
		return err
	}
	if err := cw.w.StartTag(TagFolder); err != nil {
		return err
	}
	if err := cw.writeObject(&d.Object); err != nil {
		return err
	}
	if err := cw.writeExtensions(&d.Object); err != nil {
		return err
	}
	return cw.w.EndTag()
}

// WriteFileBegin writes the header fields of f. A non-negative bodyLength
// opens a Body of exactly that many bytes; a negative one writes no Body.
func (cw *Writer) WriteFileBegin(f *File, bodyLength int64) error {
	if cw.file != nil {
		return fmt.Errorf("content: file %q begun inside open file %q", f.name, cw.file.name)
	}
	if err := cw.w.SwitchPage(cw.page); err != nil {
		return err
	}
	if err := cw.w.StartTag(TagFile); err != nil {
		return err
	}
	if err := cw.writeObject(&f.Object); err != nil {
		return err
	}
	if f.Has(FieldContentType) {
		if err := cw.w.StringTag(TagCTType, f.contentType); err != nil {
			return err
		}
	}
	if f.Has(FieldSize) {
		if err := cw.w.StringTag(TagSize, strconv.FormatInt(f.size, 10)); err != nil {
			return err
		}
	}
	if err := cw.writeExtensions(&f.Object); err != nil {
		return err
	}
	cw.file = f
	if bodyLength < 0 {
		return nil
	}
	if err := cw.w.StartTag(TagBody); err != nil {
		return err
	}
	cw.bodyOpen = true
	return cw.w.OpaqueBegin(uint64(bodyLength))
}

// WriteFileData writes part of the body declared by WriteFileBegin.
func (cw *Writer) WriteFileData(p []byte) error {
	if !cw.bodyOpen {
		return fmt.Errorf("content: file data without open body")
	}
	return cw.w.OpaqueData(p)
}

// WriteFileEnd closes the Body, if one was opened, and then the File.
func (cw *Writer) WriteFileEnd() error {
	if cw.file == nil {
		return fmt.Errorf("content: file end without open file")
	}
	if cw.bodyOpen {
		if err := cw.w.EndTag(); err != nil {
			return err
		}
		cw.bodyOpen = false
	}
	cw.file = nil
	return cw.w.EndTag()
}

// WriteFile writes f in one go. A nil body writes no Body element; an
// empty non-nil body writes an empty one.
func (cw *Writer) WriteFile(f *File, body []byte) error {
	length := int64(-1)
	if body != nil {
		length = int64(len(body))
	}
	if err := cw.WriteFileBegin(f, length); err != nil {
		return err
	}
	if len(body) > 0 {
		if err := cw.WriteFileData(body); err != nil {
			return err
		}
	}
	return cw.WriteFileEnd()
}

func (cw *Writer) writeObject(o *Object) error {
	if o.Has(FieldName) {
		if err := cw.w.StringTag(TagName, o.name); err != nil {
			return err
		}
	}
	stamps := []struct {
		field Field
		tag   uint8
		value DateTime
	}{
		{FieldCreated, TagCreated, o.created},
		{FieldModified, TagModified, o.modified},
		{FieldAccessed, TagAccessed, o.accessed},
	}
	for _, st := range stamps {
		if !o.Has(st.field) {
			continue
		}
		if err := cw.w.StringTag(st.tag, st.value.String()); err != nil {
			return err
		}
	}
	if o.Has(FieldAttributes) {
		if err := cw.writeAttributes(o.attributes); err != nil {
			return err
		}
	}
	if o.Has(FieldRole) {
		if err := cw.w.StringTag(TagRole, o.role); err != nil {
			return err
		}
	}
	return nil
}

func (cw *Writer) writeAttributes(a Attributes) error {
	if !a.any() {
		return cw.w.EmptyTag(TagAttributes)
	}
	if err := cw.w.StartTag(TagAttributes); err != nil {
		return err
	}
	flags := []struct {
		on  bool
		tag uint8
	}{
		{a.Archived, TagA},
		{a.Deletable, TagD},
		{a.Hidden, TagH},
		{a.Readable, TagR},
		{a.System, TagS},
		{a.Writable, TagW},
		{a.Executable, TagX},
	}
	for _, fl := range flags {
		if !fl.on {
			continue
		}
		if err := cw.w.EmptyTag(fl.tag); err != nil {
			return err
		}
	}
	return cw.w.EndTag()
}

func (cw *Writer) writeExtensions(o *Object) error {
	for _, ext := range o.Extensions {
		if err := cw.w.StartTag(TagExt); err != nil {
			return err
		}
		if err := cw.w.StringTag(TagXNam, ext.Name); err != nil {
			return err
		}
		for _, v := range ext.Values {
			if err := cw.w.StringTag(TagXVal, v); err != nil {
				return err
			}
		}
		if err := cw.w.EndTag(); err != nil {
			return err
		}
	}
	return nil
}
