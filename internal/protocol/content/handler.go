package content

import "bytes"

// ContentHandler receives decoded objects.
//
// For a file, OnFileBegin fires once its header fields are complete.
// hasBody reports whether OnFileData calls follow. OnFileEnd always
// closes the file; commit is false when the body was cut short and any
// partial data must be discarded. Slices passed to OnFileData are only
// valid for the duration of the call.
type ContentHandler interface {
	OnFileBegin(f *File, hasBody bool) error
	OnFileData(f *File, p []byte) error
	OnFileEnd(f *File, commit bool) error
	OnFolder(d *Folder) error
}

// Collected is one file delivered to a Collector.
type Collected struct {
	File      *File
	HasBody   bool
	Body      []byte
	Committed bool
}

// Collector keeps everything it is handed in memory.
type Collector struct {
	Folders []*Folder
	Files   []*Collected

	open *Collected
	buf  bytes.Buffer
}

var _ ContentHandler = (*Collector)(nil)

func (c *Collector) OnFileBegin(f *File, hasBody bool) error {
	c.open = &Collected{File: f, HasBody: hasBody}
	c.buf.Reset()
	return nil
}

func (c *Collector) OnFileData(_ *File, p []byte) error {
	_, err := c.buf.Write(p)
	return err
}

func (c *Collector) OnFileEnd(f *File, commit bool) error {
	if c.open == nil || c.open.File != f {
		c.open = &Collected{File: f}
	}
	c.open.Committed = commit
	if c.open.HasBody {
		c.open.Body = append([]byte{}, c.buf.Bytes()...)
	}
	c.Files = append(c.Files, c.open)
	c.open = nil
	c.buf.Reset()
	return nil
}

func (c *Collector) OnFolder(d *Folder) error {
	c.Folders = append(c.Folders, d)
	return nil
}
