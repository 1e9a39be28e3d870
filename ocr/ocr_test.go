//go:build ocr

package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestPNG creates a simple PNG image with a text-like block.
// OCR might or might not recognize anything in it.
func createTestPNG(width, height int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 10; x < 50; x++ {
		for y := 10; y < 30; y++ {
			img.Set(x, y, color.Black)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func newClient(t *testing.T) *Client {
	t.Helper()
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRecognizeLines(t *testing.T) {
	client := newClient(t)

	// Only checks that recognition runs; the image holds no real text
	_, err := client.RecognizeLines(createTestPNG(100, 50))
	assert.NoError(t, err)
}

func TestSetLanguage(t *testing.T) {
	client := newClient(t)
	assert.NoError(t, client.SetLanguage("eng"))
	assert.NoError(t, client.SetPageSegMode(PSM_SINGLE_BLOCK))
	assert.NoError(t, Configure(client, DefaultConfig()))
}

func TestClose(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	require.NoError(t, client.Close())

	client.client = nil
	assert.NoError(t, client.Close())
}
