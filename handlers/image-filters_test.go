package handler

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestParseThumbnailFilters(t *testing.T) {
	filters, err := parseThumbnailFilters(map[string]string{})
	if err != nil || len(filters) != 1 {
		t.Fatalf("default: %d filters, %v", len(filters), err)
	}

	filters, err = parseThumbnailFilters(map[string]string{
		"size":      "64",
		"rotate":    "90",
		"grayscale": "",
		"unknown":   "1",
	})
	if err != nil || len(filters) != 3 {
		t.Fatalf("with adjustments: %d filters, %v", len(filters), err)
	}

	for _, q := range []map[string]string{
		{"size": "8"},
		{"size": "2048"},
		{"size": "big"},
		{"brightness": "500"},
		{"gaussian_blur": "0"},
	} {
		_, err := parseThumbnailFilters(q)
		var fe FilterError
		if !errors.As(err, &fe) {
			t.Fatalf("%v: expected FilterError, got %v", q, err)
		}
	}
}

func TestThumbnailPipeline(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 150))
	for x := 0; x < 300; x++ {
		src.Set(x, 75, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := decodeImage(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	filters, _ := parseThumbnailFilters(map[string]string{"size": "100"})
	out := processImage(img, filters)
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("expected 100x50, got %v", b)
	}

	data, err := encodeImage(out)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil || format != "jpeg" {
		t.Fatalf("encoded as %q: %v", format, err)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, err := decodeImage(strings.NewReader("definitely not an image")); err == nil {
		t.Fatalf("expected an error")
	}
}
