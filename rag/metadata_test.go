package rag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/layoutseq/model"
)

func TestMetadataMap(t *testing.T) {
	set, err := NewChunker().WithIDFunc(counterIDs()).Generate(twoTablesOneText(), info)
	require.NoError(t, err)

	meta := set.MetadataMap()
	require.Len(t, meta, 3)
	m, ok := meta["1_page_segment_type_table_1.txt_metadata"]
	require.True(t, ok)

	data, err := m.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"chunk_id": "C-00002",
		"page_no": 1,
		"sequence_no": 1,
		"bbox_format": "X1,Y1,X2,Y2",
		"bbox": [0,20,100,60],
		"doc_name": "report.pdf",
		"document_id": "doc-1234",
		"chunking_method": "page_and_segment_type_table",
		"char_count": 3,
		"resources": [{"type": "local", "path": "/resources/doc-abc.pdf"}]
	}`, string(data))

	assert.Equal(t, "a|b", set.ChunkMap()["1_page_segment_type_table_1"])
}

func TestMetadataNullBBoxAndResources(t *testing.T) {
	m := NewChunkMetadata(model.Chunk{ID: "C-1", PageNo: 1})
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["bbox"])
	assert.Equal(t, []any{}, decoded["resources"])
}

func TestChunkSetFilters(t *testing.T) {
	segs := append(twoTablesOneText(),
		sequenced(2, 1, model.ContentLine, model.NewBBox(0, 0, 10, 10), "Second page"),
	)
	set, err := NewChunker().Generate(segs, info)
	require.NoError(t, err)

	assert.Equal(t, 1, set.FilterByPage(2).Count())
	assert.Equal(t, 2, set.FilterByMethod("page_and_segment_type_table").Count())
	assert.Equal(t, 1, set.Search("SECOND").Count())
	assert.Equal(t, []int{1, 2}, set.Pages())
}
