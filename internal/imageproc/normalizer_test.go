package imageproc

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"testing"

	"visualizer/internal/domain"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestNormalizeProducesTargetSquare(t *testing.T) {
	n := NewNormalizer(64, 70)
	shapes := []struct {
		name string
		w, h int
	}{
		{"landscape", 200, 100},
		{"portrait", 100, 200},
		{"square", 150, 150},
		{"tiny", 10, 30},
	}
	for _, s := range shapes {
		src := encodePNG(t, solidImage(s.w, s.h, color.NRGBA{R: 10, G: 200, B: 30, A: 255}))
		out, err := n.Normalize(src, "image/png")
		if err != nil {
			t.Fatalf("%s: Normalize returned error: %v", s.name, err)
		}
		if out.Width != 64 || out.Height != 64 {
			t.Fatalf("%s: unexpected dimensions %dx%d", s.name, out.Width, out.Height)
		}
		if out.MIME != "image/jpeg" {
			t.Fatalf("%s: unexpected mime %q", s.name, out.MIME)
		}
		decoded, _, err := image.Decode(bytes.NewReader(out.Data))
		if err != nil {
			t.Fatalf("%s: output is not decodable: %v", s.name, err)
		}
		bounds := decoded.Bounds()
		if bounds.Dx() != 64 || bounds.Dy() != 64 {
			t.Fatalf("%s: decoded dimensions %dx%d", s.name, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestNormalizeScalesUniformly(t *testing.T) {
	// Left half red, right half blue. A uniform cover scale keeps the color
	// boundary in the horizontal center; a stretch or off-center crop would
	// move it.
	src := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			if x < 50 {
				src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				src.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}

	n := NewNormalizer(64, 90)
	out, err := n.Normalize(encodePNG(t, src), "image/png")
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	decoded, _, err := image.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}

	r, _, b, _ := decoded.At(16, 32).RGBA()
	if r <= b {
		t.Fatalf("left quadrant should be red, got r=%d b=%d", r, b)
	}
	r, _, b, _ = decoded.At(48, 32).RGBA()
	if b <= r {
		t.Fatalf("right quadrant should be blue, got r=%d b=%d", r, b)
	}
}

func TestNormalizeRejectsNonImageMediaType(t *testing.T) {
	n := NewNormalizer(64, 70)
	_, err := n.Normalize([]byte("not an image"), "application/pdf")
	if err == nil {
		t.Fatalf("expected error for non-image media type")
	}
	if domain.KindOf(err) != domain.KindInput {
		t.Fatalf("unexpected kind: %s", domain.KindOf(err))
	}
}

func TestNormalizeRejectsUndecodableData(t *testing.T) {
	n := NewNormalizer(64, 70)
	_, err := n.Normalize([]byte{0x00, 0x01, 0x02, 0x03}, "image/png")
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if domain.KindOf(err) != domain.KindInput {
		t.Fatalf("unexpected kind: %s", domain.KindOf(err))
	}
}

func TestNormalizeRejectsEmptyData(t *testing.T) {
	n := NewNormalizer(64, 70)
	if _, err := n.Normalize(nil, "image/png"); err == nil {
		t.Fatalf("expected error for empty data")
	}
}
