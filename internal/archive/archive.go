// Package archive packs a directory tree into one WBXML document and
// unpacks such documents back onto disk.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danmuck/wbxml/internal/localfs"
	"github.com/danmuck/wbxml/internal/observability"
	"github.com/danmuck/wbxml/internal/protocol/content"
	"github.com/danmuck/wbxml/internal/protocol/wbxml"
)

type Options struct {
	// DocumentID goes into the string table; empty generates a UUID.
	DocumentID string
	ChunkSize  int
	Logger     zerolog.Logger
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return wbxml.DefaultChunkSize
}

func (o Options) codecOptions() []wbxml.Option {
	return []wbxml.Option{
		wbxml.WithLogger(o.Logger),
		wbxml.WithChunkSize(o.chunkSize()),
	}
}

// Summary describes one packed or unpacked document.
type Summary struct {
	DocumentID string
	Folders    int
	Files      int
	Aborted    int
	Bytes      int64
}

// Pack writes every folder and file under root to w, parents first.
func Pack(ctx context.Context, root string, w io.Writer, opts Options) (sum Summary, err error) {
	start := time.Now()
	ww := wbxml.NewWriter(w, content.Pages(nil), opts.codecOptions()...)
	defer func() {
		sum.Bytes = ww.BytesWritten()
		observability.RecordDocument(observability.DirectionEncode, sum.Bytes, time.Since(start), err)
		logSummary(opts.Logger, "pack", sum, err)
	}()

	info, err := os.Stat(root)
	if err != nil {
		return sum, fmt.Errorf("archive: pack root: %w", err)
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("archive: pack root %s is not a directory", root)
	}
	store, err := localfs.New(root, opts.Logger)
	if err != nil {
		return sum, err
	}
	items, err := store.Walk()
	if err != nil {
		return sum, err
	}

	sum.DocumentID = opts.DocumentID
	if sum.DocumentID == "" {
		sum.DocumentID = uuid.NewString()
	}
	if err := ww.WriteHeader(sum.DocumentID); err != nil {
		return sum, err
	}

	cw := content.NewWriter(ww, 0)
	buf := make([]byte, opts.chunkSize())
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		switch v := item.(type) {
		case *content.Folder:
			if err := cw.WriteFolder(v); err != nil {
				return sum, err
			}
			sum.Folders++
			observability.RecordObject(observability.DirectionEncode, "folder")
		case *content.File:
			if err := packFile(store, cw, v, buf); err != nil {
				return sum, err
			}
			sum.Files++
			observability.RecordObject(observability.DirectionEncode, "file")
		}
	}
	return sum, nil
}

func packFile(store *localfs.Store, cw *content.Writer, f *content.File, buf []byte) error {
	src, err := store.Open(f.Name())
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", f.Name(), err)
	}
	defer src.Close()

	if err := cw.WriteFileBegin(f, f.Size()); err != nil {
		return err
	}
	n, err := io.CopyBuffer(fileData{cw}, io.LimitReader(src, f.Size()), buf)
	if err != nil {
		return fmt.Errorf("archive: copy %s: %w", f.Name(), err)
	}
	if n != f.Size() {
		return fmt.Errorf("archive: %s shrank while packing: %d of %d bytes", f.Name(), n, f.Size())
	}
	return cw.WriteFileEnd()
}

// fileData adapts the body step of the file protocol to io.Writer.
type fileData struct{ cw *content.Writer }

func (d fileData) Write(p []byte) (int, error) {
	if err := d.cw.WriteFileData(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Unpack decodes one document from r into root. On error, files already
// committed stay on disk; a partially written file does not.
func Unpack(ctx context.Context, r io.Reader, root string, opts Options) (sum Summary, err error) {
	start := time.Now()
	store, err := localfs.New(root, opts.Logger)
	if err != nil {
		return sum, err
	}
	h := store.Handler()
	p := wbxml.NewParser(content.Pages(&metered{ctx: ctx, next: h}), opts.codecOptions()...)

	defer func() {
		sum.DocumentID = string(p.Header().StringTable)
		sum.Folders, sum.Files, sum.Aborted = h.Folders, h.Files, h.Aborted
		sum.Bytes = p.BytesRead()
		observability.RecordDocument(observability.DirectionDecode, sum.Bytes, time.Since(start), err)
		logSummary(opts.Logger, "unpack", sum, err)
	}()

	if err := p.Parse(r); err != nil {
		h.Abort()
		return sum, err
	}
	return sum, nil
}

// metered counts delivered objects and stops the parse once ctx is done.
type metered struct {
	ctx  context.Context
	next content.ContentHandler
}

func (m *metered) OnFolder(d *content.Folder) error {
	if err := m.ctx.Err(); err != nil {
		return err
	}
	observability.RecordObject(observability.DirectionDecode, "folder")
	return m.next.OnFolder(d)
}

func (m *metered) OnFileBegin(f *content.File, hasBody bool) error {
	if err := m.ctx.Err(); err != nil {
		return err
	}
	return m.next.OnFileBegin(f, hasBody)
}

func (m *metered) OnFileData(f *content.File, p []byte) error {
	return m.next.OnFileData(f, p)
}

func (m *metered) OnFileEnd(f *content.File, commit bool) error {
	if commit {
		observability.RecordObject(observability.DirectionDecode, "file")
	}
	return m.next.OnFileEnd(f, commit)
}

func logSummary(logger zerolog.Logger, op string, sum Summary, err error) {
	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.
		Str("op", op).
		Str("document", sum.DocumentID).
		Int("folders", sum.Folders).
		Int("files", sum.Files).
		Int("aborted", sum.Aborted).
		Int64("bytes", sum.Bytes).
		Msg("archive")
}
