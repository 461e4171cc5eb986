package syncml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/wbxml/internal/protocol/wbxml"
)

func TestTableOffsets(t *testing.T) {
	pages := Pages()
	require.Len(t, pages, 9)
	assert.Equal(t, "SyncML", wbxml.TagName(pages[PageSyncML], 0x2d))
	assert.Equal(t, "VerDTD", wbxml.TagName(pages[PageSyncML], 0x31))
	assert.Equal(t, "Correlator", wbxml.TagName(pages[PageSyncML], 0x3c))
	assert.Equal(t, "MetInf", wbxml.TagName(pages[PageMetInf], 0x0e))
	assert.Equal(t, "FieldLevel", wbxml.TagName(pages[PageMetInf], 0x16))
	assert.Equal(t, "Sign", wbxml.TagName(pages[PageSignature], 0x09))
	assert.False(t, wbxml.HasTag(pages[3], 0x05))
}

func TestRenderEnvelope(t *testing.T) {
	var doc bytes.Buffer
	w := wbxml.NewWriter(&doc, Pages())
	require.NoError(t, w.WriteHeader("-//SYNCML//DTD SyncML 1.2//EN"))
	require.NoError(t, w.StartTag(0x2d)) // SyncML
	require.NoError(t, w.StartTag(0x2c)) // SyncHdr
	require.NoError(t, w.StringTag(0x31, "1.2"))
	require.NoError(t, w.StartTag(0x1a)) // Meta
	require.NoError(t, w.SwitchPage(PageMetInf))
	require.NoError(t, w.StringTag(0x0c, "4096"))
	require.NoError(t, w.SwitchPage(PageSignature))
	require.NoError(t, w.OpaqueTag(0x09, []byte{0xde, 0xad}))
	require.NoError(t, w.SwitchPage(PageSyncML))
	require.NoError(t, w.EndTag())
	require.NoError(t, w.EndTag())
	require.NoError(t, w.EmptyTag(0x12)) // Final
	require.NoError(t, w.EndTag())

	var out strings.Builder
	tracer := wbxml.NewXMLTracer(&out, Pages(), " ")
	require.NoError(t, wbxml.NewParser(tracer.Pages()).Parse(bytes.NewReader(doc.Bytes())))
	require.NoError(t, tracer.Flush())

	assert.Equal(t, strings.Join([]string{
		"<SyncML>",
		" <SyncHdr>",
		"  <VerDTD>1.2</VerDTD>",
		"  <Meta>",
		"   <MaxMsgSize>4096</MaxMsgSize>",
		"   <Sign>dead</Sign>",
		"  </Meta>",
		" </SyncHdr>",
		" <Final></Final>",
		"</SyncML>",
	}, "\n"), out.String())
}
