package wbxml

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/wbxml/internal/protocol"
)

func TestWriterRoundTrip(t *testing.T) {
	events := &[]event{}
	pages := []Codepage{
		newRecorder("zero", events, "Root", "Leaf", "Data"),
		newRecorder("one", events, "Other"),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, pages)
	require.NoError(t, w.WriteHeader("doc-7"))
	require.NoError(t, w.StartTag(5))
	assert.Equal(t, 1, w.Level())
	require.NoError(t, w.EmptyTag(6))
	require.NoError(t, w.StringTag(7, "text"))
	require.NoError(t, w.OpaqueTag(7, []byte{0x00, 0x01, 0xFF}))
	require.NoError(t, w.SwitchPage(1))
	require.NoError(t, w.EmptyTag(5))
	require.NoError(t, w.SwitchPage(0))
	require.NoError(t, w.EndTag())
	assert.Equal(t, 0, w.Level())
	assert.Equal(t, int64(buf.Len()), w.BytesWritten())

	p := NewParser(pages)
	require.NoError(t, p.Parse(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, []byte("doc-7"), p.Header().StringTable)

	var kinds []string
	for _, e := range *events {
		kinds = append(kinds, e.Page+":"+e.Kind)
	}
	assert.Equal(t, []string{
		"zero:start",
		"zero:start", "zero:end",
		"zero:start", "zero:string", "zero:end",
		"zero:start", "zero:opaque-begin", "zero:opaque", "zero:opaque-end", "zero:end",
		"one:start", "one:end",
		"zero:end",
	}, kinds)
}

func TestWriterSwitchPageIsLazy(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	require.NoError(t, w.SwitchPage(0))
	assert.Zero(t, buf.Len())
	require.NoError(t, w.SwitchPage(3))
	assert.Equal(t, []byte{0x00, 0x03}, buf.Bytes())
	assert.Equal(t, 3, w.Page())
}

func TestWriterRejectsUnbalancedEnd(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, nil)
	require.Error(t, w.EndTag())
	require.Error(t, w.InlineString("x"))
}

func TestWriterRejectsUnknownTag(t *testing.T) {
	pages := []Codepage{&BasePage{PageName: "p", First: 5, Names: []string{"A"}}}
	w := NewWriter(&bytes.Buffer{}, pages)
	err := w.StartTag(6)
	if !errors.Is(err, protocol.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
	if err := w.SwitchPage(1); !errors.Is(err, protocol.ErrUnknownCodepage) {
		t.Fatalf("expected ErrUnknownCodepage, got %v", err)
	}
}

func TestWriterOpaqueAccounting(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	require.NoError(t, w.StartTag(5))
	require.NoError(t, w.OpaqueBegin(4))

	require.Error(t, w.EndTag(), "end with outstanding opaque bytes")
	require.Error(t, w.EmptyTag(6), "tag with outstanding opaque bytes")
	require.NoError(t, w.OpaqueData([]byte("ab")))
	require.Error(t, w.OpaqueData([]byte("cde")), "overrun")
	require.NoError(t, w.OpaqueData([]byte("cd")))
	require.NoError(t, w.EndTag())

	assert.Equal(t, []byte{0x45, 0xC3, 0x04, 'a', 'b', 'c', 'd', 0x01}, buf.Bytes())
}

func TestWriterEmptyOpaque(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	require.NoError(t, w.OpaqueTag(5, nil))
	assert.Equal(t, []byte{0x45, 0xC3, 0x00, 0x01}, buf.Bytes())
}

func TestXMLTracer(t *testing.T) {
	events := &[]event{}
	pages := []Codepage{newRecorder("zero", events, "Root", "Leaf", "Data")}

	var out strings.Builder
	tracer := NewXMLTracer(&out, pages, "  ")
	p := NewParser(tracer.Pages())
	require.NoError(t, p.Parse(bytes.NewReader(doc(0x45, 0x06, 0x47, 0x03, 'h', 'i', 0x00, 0x01, 0x47, 0xC3, 0x02, 0xAB, 0xCD, 0x01, 0x01))))
	require.NoError(t, tracer.Flush())

	assert.Equal(t, "<Root>\n  <Leaf></Leaf>\n  <Data>hi</Data>\n  <Data>abcd</Data>\n</Root>", out.String())
	assert.Len(t, *events, 12, "tracer forwards to the wrapped page")
}
