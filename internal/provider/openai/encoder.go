package openai

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
)

// buildEditForm serializes an edit request into a multipart body and returns
// it with its content-type header. The writer generates a random boundary, so
// payload collisions are not a concern. Exactly one image part is written,
// followed by the scalar parameter parts.
func buildEditForm(req EditRequest, outputSize string) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	mime := req.ImageMIME
	if mime == "" {
		mime = "image/jpeg"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="base.jpg"`)
	header.Set("Content-Type", mime)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.ImageData); err != nil {
		return nil, "", err
	}

	fields := []struct {
		name  string
		value string
	}{
		{"prompt", req.Prompt},
		{"n", "1"},
		{"size", outputSize},
		{"response_format", "b64_json"},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
