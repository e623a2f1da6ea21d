package apiclient

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/socialfeed/server/pkg/images"
	"github.com/socialfeed/server/pkg/structs"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadImage validates f locally and sends it to the upload endpoint,
// returning the hosted URL.
func (c *Client) UploadImage(ctx context.Context, f images.File) (string, error) {
	if err := images.Validate(f.Name, f.Type, f.Data); err != nil {
		return "", err
	}

	// Build form
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+quoteEscaper.Replace(f.Name)+`"`)
	header.Set("Content-Type", f.Type)
	part, err := form.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/uploads", nil, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var upload structs.V0Upload
	if err := c.send(req, &upload); err != nil {
		return "", err
	}
	return upload.Url, nil
}
