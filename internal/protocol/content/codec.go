package content

import (
	"fmt"
	"io"

	"github.com/danmuck/wbxml/internal/protocol/wbxml"
)

// Pages returns a codepage table holding only the content page.
func Pages(h ContentHandler) []wbxml.Codepage {
	return []wbxml.Codepage{NewCodepage(h)}
}

// Decode parses one document from r and delivers its objects to h.
func Decode(r io.Reader, h ContentHandler, opts ...wbxml.Option) error {
	return wbxml.NewParser(Pages(h), opts...).Parse(r)
}

// Encode writes a document holding items, in order. Files are written
// without a body.
func Encode(w io.Writer, docID string, items []Item, opts ...wbxml.Option) error {
	ww := wbxml.NewWriter(w, Pages(nil), opts...)
	if err := ww.WriteHeader(docID); err != nil {
		return err
	}
	cw := NewWriter(ww, 0)
	for _, it := range items {
		var err error
		switch v := it.(type) {
		case *File:
			err = cw.WriteFile(v, nil)
		case *Folder:
			err = cw.WriteFolder(v)
		default:
			err = fmt.Errorf("content: cannot encode %T", it)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
