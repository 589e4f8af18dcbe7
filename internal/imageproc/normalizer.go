package imageproc

import (
	"bytes"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	"visualizer/internal/domain"
)

// Image is a normalized square raster ready for transmission upstream.
type Image struct {
	Data   []byte
	Width  int
	Height int
	MIME   string
}

// Normalizer converts arbitrary user photos into fixed-size square JPEG
// buffers. It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	size    int
	quality int
}

// NewNormalizer returns a Normalizer producing size x size JPEGs at the given
// quality.
func NewNormalizer(size, quality int) *Normalizer {
	return &Normalizer{size: size, quality: quality}
}

// Normalize decodes the source bytes, scales them uniformly so the content
// covers the target square, center-crops the overflow onto a white canvas and
// re-encodes as JPEG. The declared media type, when present, must be an image
// type. EXIF orientation is honored during decoding.
func (n *Normalizer) Normalize(data []byte, mediaType string) (*Image, error) {
	if len(data) == 0 {
		return nil, domain.E(domain.KindInput, "image data is empty", nil)
	}
	if mediaType != "" && !strings.HasPrefix(strings.ToLower(mediaType), "image/") {
		return nil, domain.E(domain.KindInput, "unsupported media type: "+mediaType, nil)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.E(domain.KindInput, "could not decode image", err)
	}

	// Fill scales with a single uniform factor and center-crops, so the
	// aspect ratio of the content is never distorted.
	scaled := imaging.Fill(src, n.size, n.size, imaging.Center, imaging.Lanczos)

	// Flatten onto white so transparent sources do not turn black in JPEG.
	canvas := imaging.New(n.size, n.size, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	canvas = imaging.OverlayCenter(canvas, scaled, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return nil, domain.E(domain.KindInternal, "could not encode normalized image", err)
	}

	return &Image{
		Data:   buf.Bytes(),
		Width:  n.size,
		Height: n.size,
		MIME:   "image/jpeg",
	}, nil
}
