package ocr

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/layoutseq/model"
)

type fakeRecognizer struct {
	pages map[string][]Token
	fail  string
}

func (f *fakeRecognizer) RecognizeLines(data []byte) ([]Token, error) {
	if string(data) == f.fail {
		return nil, errors.New("engine crashed")
	}
	return f.pages[string(data)], nil
}

func counterIDs() model.IDFunc {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%05d", prefix, n)
	}
}

func TestProviderStream(t *testing.T) {
	rec := &fakeRecognizer{pages: map[string][]Token{
		"p1": {
			{Text: "Title", Box: image.Rect(10, 10, 200, 40), Confidence: 95},
			{Text: "", Box: image.Rect(10, 50, 200, 60), Confidence: 90},
			{Text: "noise", Box: image.Rect(10, 70, 20, 80), Confidence: 12},
		},
		"p2": {
			{Text: "Body", Box: image.Rect(5, 100, 300, 120), Confidence: 88},
			{Text: "flat", Box: image.Rect(5, 130, 5, 140), Confidence: 99},
		},
	}}

	p := NewProvider(rec, Config{MinConfidence: 50}, nil).WithIDFunc(counterIDs())
	stream, err := p.Stream(map[int][]byte{2: []byte("p2"), 1: []byte("p1")})
	require.NoError(t, err)

	assert.Equal(t, Technique, stream.Technique)
	require.Len(t, stream.Segments, 2)

	first := stream.Segments[0]
	assert.Equal(t, "S-00001", first.ID)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, "Title", first.Content)
	assert.Equal(t, model.ContentLine, first.ContentType)
	assert.Equal(t, model.NewBBox(10, 10, 200, 40), first.BBox)
	assert.Equal(t, Technique, first.Technique)
	assert.Equal(t, model.Unsequenced, first.Sequence)

	assert.Equal(t, 2, stream.Segments[1].Page)
	assert.Equal(t, "Body", stream.Segments[1].Content)
}

func TestProviderStreamEmpty(t *testing.T) {
	stream, err := NewProvider(&fakeRecognizer{}, Config{}, nil).Stream(nil)
	require.NoError(t, err)
	assert.Equal(t, Technique, stream.Technique)
	assert.Empty(t, stream.Segments)
}

func TestProviderStreamError(t *testing.T) {
	rec := &fakeRecognizer{fail: "bad"}
	_, err := NewProvider(rec, Config{}, nil).Stream(map[int][]byte{1: []byte("ok"), 4: []byte("bad")})
	require.Error(t, err)

	var stageErr *model.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, "ocr", stageErr.Stage)
	assert.Equal(t, 4, stageErr.Page)
}

// statefulRecognizer mimics an engine that keeps the current image between
// setting it and reading its boxes
type statefulRecognizer struct {
	current []byte
}

func (r *statefulRecognizer) RecognizeLines(data []byte) ([]Token, error) {
	r.current = data
	runtime.Gosched()
	return []Token{{Text: string(r.current), Box: image.Rect(0, 0, 10, 10), Confidence: 90}}, nil
}

func TestProviderStreamConcurrentDocuments(t *testing.T) {
	p := NewProvider(&statefulRecognizer{}, Config{}, nil)

	const docs = 8
	results := make([]model.Stream, docs)
	errs := make([]error, docs)

	var wg sync.WaitGroup
	for i := 0; i < docs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			images := map[int][]byte{
				1: []byte(fmt.Sprintf("doc%d-page1", i)),
				2: []byte(fmt.Sprintf("doc%d-page2", i)),
			}
			results[i], errs[i] = p.Stream(images)
		}(i)
	}
	wg.Wait()

	for i := 0; i < docs; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i].Segments, 2)
		assert.Equal(t, fmt.Sprintf("doc%d-page1", i), results[i].Segments[0].Content)
		assert.Equal(t, fmt.Sprintf("doc%d-page2", i), results[i].Segments[1].Content)
	}
}

type fakeEngine struct {
	lang string
	mode PageSegMode
	err  error
}

func (e *fakeEngine) SetLanguage(lang string) error {
	e.lang = lang
	return e.err
}

func (e *fakeEngine) SetPageSegMode(mode PageSegMode) error {
	e.mode = mode
	return e.err
}

func TestConfigure(t *testing.T) {
	e := &fakeEngine{}
	require.NoError(t, Configure(e, DefaultConfig()))
	assert.Equal(t, "eng", e.lang)
	assert.Equal(t, PSM_AUTO, e.mode)

	e = &fakeEngine{}
	require.NoError(t, Configure(e, Config{Language: "deu", PageSegMode: PSM_SPARSE_TEXT}))
	assert.Equal(t, "deu", e.lang)
	assert.Equal(t, PSM_SPARSE_TEXT, e.mode)

	e = &fakeEngine{}
	require.NoError(t, Configure(e, Config{}))
	assert.Empty(t, e.lang)
	assert.Zero(t, e.mode, "zero mode keeps the engine default")

	e = &fakeEngine{err: errors.New("no traineddata")}
	err := Configure(e, Config{Language: "xyz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `setting language "xyz"`)
}
