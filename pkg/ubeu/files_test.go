package ubeu

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UploadFile(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/credentials/import", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)

		assert.Equal(t, "wallet.json", header.Filename)
		assert.Equal(t, `{"credentials":[]}`, string(content))
		assert.Equal(t, "merge", r.FormValue("mode"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"imported":0}}`))
	})

	var result APIResponse[map[string]int]
	err := client.UploadFile(context.Background(), "/api/v1/credentials/import", "wallet.json",
		strings.NewReader(`{"credentials":[]}`), map[string]string{"mode": "merge"}, &result)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Data["imported"])
}

func TestClient_DownloadFile(t *testing.T) {
	payload := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(payload)
	})

	data, err := client.DownloadFile(context.Background(), "/api/v1/credential/vc-1/pdf")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestClient_DownloadFileNotFound(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.DownloadFile(context.Background(), "/api/v1/credential/missing/pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotEmpty(t, TraceID(err))
}
