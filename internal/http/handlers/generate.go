package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"visualizer/internal/catalog"
	"visualizer/internal/domain"
)

// Generate accepts a façade photo plus either a ready prompt or a
// color/finish choice, runs the generation pipeline and returns the public
// URL of the rendered result.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.Config.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, string(domain.KindInput), "invalid or oversized multipart payload")
		return
	}

	prompt, err := resolvePrompt(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, string(domain.KindInput), domain.MessageOf(err))
		return
	}

	source, mediaType, err := readSourceImage(r, a.Config.MaxUploadBytes)
	if err != nil {
		a.error(w, http.StatusBadRequest, string(domain.KindInput), domain.MessageOf(err))
		return
	}

	img, err := a.Normalizer.Normalize(source, mediaType)
	if err != nil {
		a.pipelineError(w, err)
		return
	}

	res, err := a.Pipeline.Generate(r.Context(), prompt, img)
	if err != nil {
		a.Logger.Error().Err(err).Str("kind", string(domain.KindOf(err))).Msg("generation failed")
		a.pipelineError(w, err)
		return
	}

	a.json(w, http.StatusOK, map[string]string{"url": res.URL})
}

// Catalog serves the fixed color and finish options used by the form.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"colors":   catalog.Colors,
		"finishes": catalog.Finishes,
	})
}

func (a *App) pipelineError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	msg := domain.MessageOf(err)
	switch kind {
	case domain.KindInput:
		a.error(w, http.StatusBadRequest, string(kind), msg)
	case domain.KindUpstream, domain.KindProtocol:
		a.error(w, http.StatusBadGateway, string(kind), msg)
	case domain.KindTimeout:
		a.error(w, http.StatusGatewayTimeout, string(kind), msg)
	default:
		a.error(w, http.StatusInternalServerError, string(kind), msg)
	}
}

// resolvePrompt prefers an explicit prompt field and otherwise builds one
// from the catalog color/finish fields. An optional color_hex overrides the
// catalog swatch.
func resolvePrompt(r *http.Request) (string, error) {
	if prompt := strings.TrimSpace(r.FormValue("prompt")); prompt != "" {
		return prompt, nil
	}
	colorName := strings.TrimSpace(r.FormValue("color"))
	finish := strings.TrimSpace(r.FormValue("finish"))
	if colorName == "" {
		return "", domain.E(domain.KindInput, "prompt or color is required", nil)
	}
	color, ok := catalog.FindColor(colorName)
	if !ok {
		return "", domain.E(domain.KindInput, "unknown color: "+colorName, nil)
	}
	if hex := strings.TrimSpace(r.FormValue("color_hex")); hex != "" {
		color.Hex = hex
	}
	if finish == "" {
		finish = catalog.Finishes[0]
	} else if !catalog.ValidFinish(finish) {
		return "", domain.E(domain.KindInput, "unknown finish: "+finish, nil)
	}
	return catalog.BuildPrompt(color, finish), nil
}

// readSourceImage extracts the uploaded photo: an image file part when
// present, else the legacy base data-URL field.
func readSourceImage(r *http.Request, maxBytes int64) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if err == nil {
		defer func() {
			_ = file.Close()
		}()
		data, readErr := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if readErr != nil {
			return nil, "", domain.E(domain.KindInput, "could not read uploaded image", readErr)
		}
		if int64(len(data)) > maxBytes {
			return nil, "", domain.E(domain.KindInput, "image exceeds upload size limit", nil)
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "application/octet-stream" {
			// Generic uploads leave type detection to the decoder.
			contentType = ""
		}
		return data, contentType, nil
	}

	if base := r.FormValue("base"); base != "" {
		return parseDataURL(base)
	}
	return nil, "", domain.E(domain.KindInput, "image is required", nil)
}

// parseDataURL decodes a data:<mime>;base64,<payload> value as sent by the
// original browser client.
func parseDataURL(s string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(meta, "data:") {
		return nil, "", domain.E(domain.KindInput, "invalid data URL", nil)
	}
	mediaType := strings.TrimPrefix(meta, "data:")
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", domain.E(domain.KindInput, "invalid base64 image payload", err)
	}
	return data, mediaType, nil
}
