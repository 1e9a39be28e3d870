package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/layoutseq/model"
	"github.com/tsawler/layoutseq/rag"
)

func testSet() *rag.ChunkSet {
	bbox := model.NewBBox(10, 20, 300, 400)
	return &rag.ChunkSet{
		DocumentID: "a1b2c3-d4",
		Chunks: []model.Chunk{
			{
				ID:             "C-00001",
				Key:            "1_page_segment_type_text_1",
				PageNo:         1,
				SequenceNo:     1,
				BBox:           &bbox,
				Content:        "Hello world",
				ChunkingMethod: "page_segment_type_text",
				CharCount:      11,
				DocName:        "report.pdf",
				DocumentID:     "a1b2c3-d4",
				Resources:      []model.Resource{{Type: "local", Path: "/res/x.pdf"}},
			},
			{
				ID:         "C-00002",
				Key:        "1_page_segment_type_table_1",
				PageNo:     1,
				SequenceNo: 2,
				Content:    "a|b",
				DocumentID: "a1b2c3-d4",
			},
		},
	}
}

func TestChunkSaverWritesBothFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	saver := NewChunkSaver(fs, Config{ChunksPath: "/out"}, nil)

	saved, err := saver.Save(testSet())
	require.NoError(t, err)
	require.Len(t, saved.ChunkFiles, 2)
	require.Len(t, saved.MetadataFiles, 2)

	dir := "/out/a1b2c3-d4/chunks"
	assert.Equal(t, filepath.Join(dir, "1_page_segment_type_text_1.txt"), saved.ChunkFiles[0])
	assert.Equal(t, filepath.Join(dir, "1_page_segment_type_text_1.txt_metadata.json"), saved.MetadataFiles[0])

	content, err := afero.ReadFile(fs, saved.ChunkFiles[0])
	require.NoError(t, err)
	assert.Equal(t, "Hello world", string(content))

	raw, err := afero.ReadFile(fs, saved.MetadataFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"chunk_id\"")

	var meta rag.ChunkMetadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "C-00001", meta.ChunkID)
	assert.Equal(t, model.BBoxFormat, meta.BBoxFormat)
	assert.Equal(t, 11, meta.CharCount)
	require.NotNil(t, meta.BBox)
	assert.Equal(t, [4]float64{10, 20, 300, 400}, meta.BBox.Array())

	raw, err = afero.ReadFile(fs, saved.MetadataFiles[1])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"bbox": null`)
}

func TestChunkSaverEmptySet(t *testing.T) {
	fs := afero.NewMemMapFs()
	saver := NewChunkSaver(fs, DefaultConfig(), nil)

	saved, err := saver.Save(&rag.ChunkSet{DocumentID: "doc"})
	require.NoError(t, err)
	assert.Empty(t, saved.ChunkFiles)

	exists, err := afero.DirExists(fs, saver.Dir("doc"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestChunkSaverRejectsEscapingNames(t *testing.T) {
	saver := NewChunkSaver(afero.NewMemMapFs(), Config{ChunksPath: "/out"}, nil)

	set := testSet()
	set.DocumentID = "../etc"
	_, err := saver.Save(set)
	assert.True(t, errors.Is(err, ErrInvalidPath))

	set = testSet()
	set.Chunks[1].Key = "../../x"
	_, err = saver.Save(set)
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestChunkSaverReadOnlyFs(t *testing.T) {
	saver := NewChunkSaver(afero.NewReadOnlyFs(afero.NewMemMapFs()), Config{ChunksPath: "/out"}, nil)
	_, err := saver.Save(testSet())
	assert.Error(t, err)
}

func TestArchiveName(t *testing.T) {
	a := NewResourceArchiver(afero.NewMemMapFs(), DefaultConfig(), nil)
	a.newUUID = func() string { return "11111111-2222-3333-4444-555555555555" }

	assert.Equal(t, "a1b2c3-2222-3333-4444-555555555555.pdf", a.ArchiveName("a1b2c3-d4", "/in/report.pdf"))
	assert.Equal(t, "plain-2222-3333-4444-555555555555.txt", a.ArchiveName("plain", "notes.txt"))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", a.ArchiveName("-x", "noext"))
}

func TestArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/report.pdf", []byte("%PDF-1.7"), 0o644))

	a := NewResourceArchiver(fs, Config{ResourcesPath: "/res"}, nil)
	a.newUUID = func() string { return "11111111-2222-3333-4444-555555555555" }

	res, err := a.Archive("a1b2c3-d4", "/in/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, ResourceTypeLocal, res.Type)
	assert.Equal(t, "/res/a1b2c3-2222-3333-4444-555555555555.pdf", res.Path)

	data, err := afero.ReadFile(fs, res.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestArchiveErrors(t *testing.T) {
	a := NewResourceArchiver(afero.NewMemMapFs(), Config{ResourcesPath: "/res"}, nil)

	_, err := a.Archive("doc", "")
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = a.Archive("doc", "/missing.pdf")
	assert.Error(t, err)
}
