package raster

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func TestClipArgs(t *testing.T) {
	args := clipArgs("in.TIF", "roi.shp", "out.TIF")
	want := []string{"-overwrite", "-of", "GTiff", "-cutline", "roi.shp", "-crop_to_cutline", "in.TIF", "out.TIF"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestWriteConcatList(t *testing.T) {
	var sb strings.Builder
	if err := writeConcatList(&sb, []string{"/frames/a.png", "/frames/b.png"}, 2); err != nil {
		t.Fatalf("writeConcatList failed: %v", err)
	}

	a, _ := filepath.Abs("/frames/a.png")
	b, _ := filepath.Abs("/frames/b.png")
	want := fmt.Sprintf("file '%s'\nduration 0.5\nfile '%s'\nduration 0.5\nfile '%s'\n", a, b, b)
	if sb.String() != want {
		t.Errorf("concat list:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestWriteConcatList_Empty(t *testing.T) {
	var sb strings.Builder
	if err := writeConcatList(&sb, nil, 2); err != nil {
		t.Fatalf("writeConcatList failed: %v", err)
	}
	if sb.Len() != 0 {
		t.Errorf("empty frame list should write nothing, got %q", sb.String())
	}
}

func TestGDALClipper_DefaultCommand(t *testing.T) {
	c := &GDALClipper{}
	if c.command() != "gdalwarp" {
		t.Errorf("default command = %q, want gdalwarp", c.command())
	}
	c.Command = "/opt/gdal/bin/gdalwarp"
	if c.command() != "/opt/gdal/bin/gdalwarp" {
		t.Errorf("command = %q", c.command())
	}
}
