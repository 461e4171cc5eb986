package archive

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/wbxml/internal/protocol"
	"github.com/danmuck/wbxml/internal/testutil/testlog"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	logger := testlog.Start(t)
	src := filepath.Join(t.TempDir(), "src")
	files := map[string]string{
		"readme.md":         "# hi\n",
		"empty":             "",
		"nested/deep/a.bin": string(bytes.Repeat([]byte{0x00, 0xC3, 0x01}, 700)),
	}
	writeTree(t, src, files)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "vacant"), 0o755))

	var doc bytes.Buffer
	opts := Options{DocumentID: "doc-1", ChunkSize: 64, Logger: logger}
	packed, err := Pack(context.Background(), src, &doc, opts)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", packed.DocumentID)
	assert.Equal(t, 3, packed.Files)
	assert.Equal(t, 3, packed.Folders, "nested, nested/deep, vacant")
	assert.Equal(t, int64(doc.Len()), packed.Bytes)

	dst := filepath.Join(t.TempDir(), "dst")
	unpacked, err := Unpack(context.Background(), bytes.NewReader(doc.Bytes()), dst, opts)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", unpacked.DocumentID)
	assert.Equal(t, packed.Files, unpacked.Files)
	assert.Equal(t, packed.Folders, unpacked.Folders)
	assert.Equal(t, packed.Bytes, unpacked.Bytes)

	for name, body := range files {
		got, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, body, string(got), name)
	}
	info, err := os.Stat(filepath.Join(dst, "vacant"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPackGeneratesDocumentID(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a": "1"})

	sum, err := Pack(context.Background(), src, &bytes.Buffer{}, Options{Logger: testlog.Start(t)})
	require.NoError(t, err)
	_, err = uuid.Parse(sum.DocumentID)
	assert.NoError(t, err)
}

func TestPackRejectsMissingRoot(t *testing.T) {
	_, err := Pack(context.Background(), filepath.Join(t.TempDir(), "nope"), &bytes.Buffer{}, Options{})
	require.Error(t, err)
}

func TestCancelledContextStops(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a": "1", "b": "2"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Pack(ctx, src, &bytes.Buffer{}, Options{})
	assert.ErrorIs(t, err, context.Canceled)

	var doc bytes.Buffer
	_, err = Pack(context.Background(), src, &doc, Options{})
	require.NoError(t, err)
	_, err = Unpack(ctx, bytes.NewReader(doc.Bytes()), t.TempDir(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnpackTruncatedDocumentDropsPartialFile(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"big.bin": string(bytes.Repeat([]byte("x"), 1000))})

	var doc bytes.Buffer
	_, err := Pack(context.Background(), src, &doc, Options{})
	require.NoError(t, err)
	truncated := doc.Bytes()[:doc.Len()-10]

	dst := t.TempDir()
	sum, err := Unpack(context.Background(), bytes.NewReader(truncated), dst, Options{Logger: testlog.Start(t)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, protocol.ErrIO))
	assert.Equal(t, 1, sum.Aborted)
	assert.Zero(t, sum.Files)

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
