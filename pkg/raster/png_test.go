package raster

import (
	"context"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestPNGRenderer_BinaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.png")
	r := PNGRenderer{}

	src := NewGrid(2, 2)
	src.Set(0, 0, 255)
	src.Set(1, 1, 255)

	if err := r.WriteBinaryPNG(context.Background(), src, path); err != nil {
		t.Fatalf("WriteBinaryPNG failed: %v", err)
	}

	got, err := r.ReadBinaryPNG(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadBinaryPNG failed: %v", err)
	}
	if got.Rows != 2 || got.Cols != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", got.Rows, got.Cols)
	}
	want := []float64{255, 0, 0, 255}
	for i, v := range want {
		if got.Data[i] != v {
			t.Errorf("pixel %d = %v, want %v", i, got.Data[i], v)
		}
	}
	if got.CountEqual(255) != 2 {
		t.Errorf("CountEqual(255) = %d, want 2", got.CountEqual(255))
	}
}

func TestPNGRenderer_RenderRGB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "color.png")
	r := PNGRenderer{}

	red := gridFrom(1, 2, 1, 0)
	green := gridFrom(1, 2, 0, 0.5)
	blue := gridFrom(1, 2, 0, math.NaN())

	if err := r.RenderRGB(context.Background(), red, green, blue, path); err != nil {
		t.Fatalf("RenderRGB failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a valid png: %v", err)
	}

	rr, gg, bb, aa := img.At(0, 0).RGBA()
	if rr>>8 != 255 || gg>>8 != 0 || bb>>8 != 0 || aa>>8 != 255 {
		t.Errorf("pixel 0 = (%d,%d,%d,%d), want pure red", rr>>8, gg>>8, bb>>8, aa>>8)
	}
	// NaN in any channel makes the pixel transparent.
	if _, _, _, a := img.At(1, 0).RGBA(); a != 0 {
		t.Errorf("pixel with NaN channel should be transparent, alpha = %d", a)
	}
}

func TestPNGRenderer_RenderRGB_ShapeMismatch(t *testing.T) {
	r := PNGRenderer{}
	err := r.RenderRGB(context.Background(), gridFrom(1, 1, 1), gridFrom(1, 2, 1, 2), gridFrom(1, 1, 1),
		filepath.Join(t.TempDir(), "x.png"))
	if err == nil {
		t.Error("expected shape mismatch error")
	}
}

func TestPNGRenderer_ColormapEndpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ndsi.png")
	r := PNGRenderer{}

	lo, hi := -1.0, 1.0
	opts := RenderOptions{Colormap: "RdBu", Min: &lo, Max: &hi}

	if err := r.RenderColormap(context.Background(), gridFrom(1, 3, -1, 1, math.NaN()), opts, path); err != nil {
		t.Fatalf("RenderColormap failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	// Low end of RdBu is red, high end is blue.
	rr, _, bb, _ := img.At(0, 0).RGBA()
	if rr>>8 != 178 || bb>>8 != 43 {
		t.Errorf("low endpoint = (%d,_,%d), want (178,_,43)", rr>>8, bb>>8)
	}
	rr, _, bb, _ = img.At(1, 0).RGBA()
	if rr>>8 != 33 || bb>>8 != 172 {
		t.Errorf("high endpoint = (%d,_,%d), want (33,_,172)", rr>>8, bb>>8)
	}
	if _, _, _, a := img.At(2, 0).RGBA(); a != 0 {
		t.Errorf("NaN pixel should be transparent, alpha = %d", a)
	}
}

func TestPNGRenderer_UnknownColormap(t *testing.T) {
	r := PNGRenderer{}
	err := r.RenderColormap(context.Background(), gridFrom(1, 1, 1), RenderOptions{Colormap: "viridis"},
		filepath.Join(t.TempDir(), "x.png"))
	if err == nil {
		t.Error("expected error for unknown colormap")
	}
}

func TestPNGRenderer_EmptyColormapIsGrayscale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gray.png")
	r := PNGRenderer{}

	if err := r.RenderColormap(context.Background(), gridFrom(1, 2, 0, 10), RenderOptions{}, path); err != nil {
		t.Fatalf("RenderColormap failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	rr, gg, bb, _ := img.At(1, 0).RGBA()
	if rr>>8 != 255 || gg>>8 != 255 || bb>>8 != 255 {
		t.Errorf("max pixel = (%d,%d,%d), want white", rr>>8, gg>>8, bb>>8)
	}
}

func TestLookupPalette(t *testing.T) {
	p := colormaps["RdBu"]

	if got := lookupPalette(p, 0); got != p[0] {
		t.Errorf("t=0 -> %v, want %v", got, p[0])
	}
	if got := lookupPalette(p, 1); got != p[2] {
		t.Errorf("t=1 -> %v, want %v", got, p[2])
	}
	if got := lookupPalette(p, 0.5); got != p[1] {
		t.Errorf("t=0.5 -> %v, want middle anchor %v", got, p[1])
	}
}
