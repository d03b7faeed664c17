package ubeu

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/transport"
)

// UploadFile posts r as the "file" field of a multipart form together with
// fields. The form is buffered in memory so every retry sends the same body.
func (c *Client) UploadFile(ctx context.Context, path, filename string, r io.Reader, fields map[string]string, result interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrap(err, "failed to create form file")
	}
	if _, err := io.Copy(part, r); err != nil {
		return errors.Wrap(err, "failed to read upload")
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return errors.Wrapf(err, "failed to write field %s", k)
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "failed to finish form")
	}

	return c.execute(ctx, &transport.Request{
		Method:      http.MethodPost,
		Path:        path,
		RawBody:     buf.Bytes(),
		ContentType: w.FormDataContentType(),
	}, result)
}

// DownloadFile returns the raw response body of a GET request
func (c *Client) DownloadFile(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := c.execute(ctx, &transport.Request{
		Method:  http.MethodGet,
		Path:    path,
		Headers: map[string]string{"Accept": "*/*"},
	}, &data)
	if err != nil {
		return nil, err
	}
	return data, nil
}
