package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/danmuck/wbxml/internal/protocol/content"
)

// Handler writes decoded objects into the store. File bodies stream into
// a temp file next to their target and are renamed into place on commit.
type Handler struct {
	store *Store

	file    *content.File
	target  string
	tmp     *os.File
	written int64

	Folders int
	Files   int
	Aborted int
}

var _ content.ContentHandler = (*Handler)(nil)

func (s *Store) Handler() *Handler {
	return &Handler{store: s}
}

func (h *Handler) OnFolder(d *content.Folder) error {
	p, err := h.store.resolvePath(d.Name())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p, 0o755); err != nil {
		return fmt.Errorf("localfs: create folder: %w", err)
	}
	if err := applyTimes(p, &d.Object); err != nil {
		return err
	}
	h.Folders++
	h.store.log.Debug().Str("folder", d.Name()).Msg("folder created")
	return nil
}

func (h *Handler) OnFileBegin(f *content.File, hasBody bool) error {
	if h.file != nil {
		return fmt.Errorf("localfs: file %q begun while %q is open", f.Name(), h.file.Name())
	}
	p, err := h.store.resolvePath(f.Name())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("localfs: create parent: %w", err)
	}
	h.file, h.target, h.written = f, p, 0
	if !hasBody {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".wbxml-*")
	if err != nil {
		h.file = nil
		return fmt.Errorf("localfs: create temp: %w", err)
	}
	h.tmp = tmp
	return nil
}

func (h *Handler) OnFileData(_ *content.File, p []byte) error {
	if h.tmp == nil {
		return fmt.Errorf("localfs: file data without open body")
	}
	n, err := h.tmp.Write(p)
	h.written += int64(n)
	if err != nil {
		return fmt.Errorf("localfs: write %s: %w", h.file.Name(), err)
	}
	return nil
}

func (h *Handler) OnFileEnd(f *content.File, commit bool) error {
	defer func() {
		h.file, h.tmp, h.target = nil, nil, ""
	}()
	if h.file == nil {
		return fmt.Errorf("localfs: file end without open file")
	}
	if !commit {
		h.Aborted++
		h.store.log.Warn().Str("file", f.Name()).Int64("written", h.written).Msg("discarding partial file")
		if h.tmp != nil {
			h.tmp.Close()
			return os.Remove(h.tmp.Name())
		}
		return nil
	}

	if h.tmp == nil {
		// Bodyless files replace any existing content through the same commit.
		tmp, err := os.CreateTemp(filepath.Dir(h.target), ".wbxml-*")
		if err != nil {
			return fmt.Errorf("localfs: create temp: %w", err)
		}
		h.tmp = tmp
	} else if f.Has(content.FieldSize) && f.Size() != h.written {
		h.store.log.Warn().
			Str("file", f.Name()).
			Int64("declared", f.Size()).
			Int64("written", h.written).
			Msg("size mismatch")
	}
	if err := h.tmp.Chmod(fileMode(f)); err != nil {
		h.discard()
		return fmt.Errorf("localfs: chmod: %w", err)
	}
	if err := h.tmp.Close(); err != nil {
		os.Remove(h.tmp.Name())
		return fmt.Errorf("localfs: close: %w", err)
	}
	if err := os.Rename(h.tmp.Name(), h.target); err != nil {
		os.Remove(h.tmp.Name())
		return fmt.Errorf("localfs: commit %s: %w", f.Name(), err)
	}
	if err := applyTimes(h.target, &f.Object); err != nil {
		return err
	}
	h.Files++
	h.store.log.Debug().Str("file", f.Name()).Int64("bytes", h.written).Msg("file committed")
	return nil
}

// Abort removes the temp file of a file left open by a failed parse.
func (h *Handler) Abort() {
	if h.tmp != nil {
		h.discard()
	}
	h.file, h.tmp, h.target = nil, nil, ""
}

func (h *Handler) discard() {
	h.tmp.Close()
	os.Remove(h.tmp.Name())
}

func fileMode(f *content.File) fs.FileMode {
	mode := fs.FileMode(0o644)
	if !f.Has(content.FieldAttributes) {
		return mode
	}
	a := f.Attributes()
	if !a.Writable {
		mode &^= 0o222
	}
	if a.Executable {
		mode |= 0o111
	}
	return mode
}

func applyTimes(path string, o *content.Object) error {
	if !o.Has(content.FieldModified) {
		return nil
	}
	mtime := o.Modified().Time
	atime := mtime
	if o.Has(content.FieldAccessed) {
		atime = o.Accessed().Time
	}
	if err := os.Chtimes(path, atime, mtime); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("localfs: set times: %w", err)
	}
	return nil
}
