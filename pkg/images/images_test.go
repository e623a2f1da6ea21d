package images

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("a.png", "image/png", pngHeader))

	assert.ErrorIs(t, Validate("a.gif", "image/gif", pngHeader), ErrInvalidImageType)
	assert.ErrorIs(t, Validate("a.png", "image/png", []byte("GIF89a not a png")), ErrInvalidImageType)
	assert.ErrorIs(t, Validate("a.png", "image/png", nil), ErrEmptyImage)
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "600", r.URL.Query().Get("expiration"))

		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cat.png", hdr.Filename)
		assert.Equal(t, pngHeader, data)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"status":  200,
			"data":    map[string]string{"id": "x1", "url": "https://i.example/x1.png"},
		})
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, "secret")
	url, err := u.Upload(context.Background(), File{Name: "cat.png", Type: "image/png", Data: pngHeader}, 600)
	require.NoError(t, err)
	assert.Equal(t, "https://i.example/x1.png", url)
}

func TestUploadHostError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"status":400,"error":{"message":"Invalid API key"}}`))
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, "nope")
	_, err := u.Upload(context.Background(), File{Name: "cat.png", Type: "image/png", Data: pngHeader}, 0)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestUploadValidatesFirst(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, "secret")
	_, err := u.Upload(context.Background(), File{Name: "a.bmp", Type: "image/bmp", Data: []byte("BM")}, 0)
	assert.ErrorIs(t, err, ErrInvalidImageType)
	assert.False(t, called)
}
