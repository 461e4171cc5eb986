package content

import (
	"strings"

	"github.com/danmuck/wbxml/internal/protocol"
)

// Field marks an optional object field as explicitly set. Unset fields are
// never written, which keeps "absent" distinct from "empty".
type Field uint16

const (
	FieldName Field = 1 << iota
	FieldCreated
	FieldModified
	FieldAccessed
	FieldAttributes
	FieldRole
	FieldContentType
	FieldSize
)

// Attributes are the single-letter flags carried under <Attributes>.
type Attributes struct {
	Hidden     bool // H
	System     bool // S
	Archived   bool // A
	Deletable  bool // D
	Writable   bool // W
	Readable   bool // R
	Executable bool // X
}

func (a Attributes) any() bool {
	return a.Hidden || a.System || a.Archived || a.Deletable || a.Writable || a.Readable || a.Executable
}

func (a *Attributes) set(tag uint8) {
	switch tag {
	case TagA:
		a.Archived = true
	case TagD:
		a.Deletable = true
	case TagH:
		a.Hidden = true
	case TagR:
		a.Readable = true
	case TagS:
		a.System = true
	case TagW:
		a.Writable = true
	case TagX:
		a.Executable = true
	}
}

// Extension is one named, multi-valued <Ext> block.
type Extension struct {
	Name   string
	Values []string
}

// NewExtension requires a name and at least one value; a block missing
// either would be dropped by the parser anyway.
func NewExtension(name string, values ...string) (Extension, error) {
	if strings.TrimSpace(name) == "" {
		return Extension{}, &protocol.ValidationError{Field: "extension name", Reason: "empty"}
	}
	if len(values) == 0 {
		return Extension{}, &protocol.ValidationError{Field: "extension " + name, Reason: "no values"}
	}
	return Extension{Name: name, Values: append([]string(nil), values...)}, nil
}

// Object holds the fields shared by files and folders.
type Object struct {
	set        Field
	name       string
	created    DateTime
	modified   DateTime
	accessed   DateTime
	attributes Attributes
	role       string

	// Extensions are written and parsed in order.
	Extensions []Extension
}

// Has reports whether f was explicitly set.
func (o *Object) Has(f Field) bool { return o.set&f == f }

// Unset clears f so that it is omitted on write.
func (o *Object) Unset(f Field) { o.set &^= f }

func (o *Object) Name() string           { return o.name }
func (o *Object) Created() DateTime      { return o.created }
func (o *Object) Modified() DateTime     { return o.modified }
func (o *Object) Accessed() DateTime     { return o.accessed }
func (o *Object) Attributes() Attributes { return o.attributes }
func (o *Object) Role() string           { return o.role }

func (o *Object) SetName(name string) {
	o.name = name
	o.set |= FieldName
}

func (o *Object) SetCreated(d DateTime) {
	o.created = d
	o.set |= FieldCreated
}

func (o *Object) SetModified(d DateTime) {
	o.modified = d
	o.set |= FieldModified
}

func (o *Object) SetAccessed(d DateTime) {
	o.accessed = d
	o.set |= FieldAccessed
}

func (o *Object) SetAttributes(a Attributes) {
	o.attributes = a
	o.set |= FieldAttributes
}

func (o *Object) SetRole(role string) {
	o.role = role
	o.set |= FieldRole
}

// AddExtension appends ext after validating it.
func (o *Object) AddExtension(ext Extension) error {
	if _, err := NewExtension(ext.Name, ext.Values...); err != nil {
		return err
	}
	o.Extensions = append(o.Extensions, ext)
	return nil
}

// Folder is a directory entry.
type Folder struct {
	Object
}

// NewFolder returns a folder with its name set.
func NewFolder(name string) (*Folder, error) {
	if name == "" {
		return nil, &protocol.ValidationError{Field: "folder name", Reason: "empty"}
	}
	d := &Folder{}
	d.SetName(name)
	return d, nil
}

// File is a file entry. Its body, if any, travels separately through the
// ContentHandler data callbacks.
type File struct {
	Object
	contentType string
	size        int64
}

// NewFile returns a file with name and size set.
func NewFile(name string, size int64) (*File, error) {
	if name == "" {
		return nil, &protocol.ValidationError{Field: "file name", Reason: "empty"}
	}
	f := &File{}
	f.SetName(name)
	if err := f.SetSize(size); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) ContentType() string { return f.contentType }
func (f *File) Size() int64         { return f.size }

func (f *File) SetContentType(ct string) {
	f.contentType = ct
	f.set |= FieldContentType
}

// SetSize rejects negative sizes.
func (f *File) SetSize(n int64) error {
	if n < 0 {
		return &protocol.ValidationError{Field: "file size", Reason: "negative"}
	}
	f.size = n
	f.set |= FieldSize
	return nil
}

// Item is a File or a Folder.
type Item interface {
	object() *Object
}

func (o *Object) object() *Object { return o }
