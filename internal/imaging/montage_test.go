package imaging

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

func rgbaAt(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestMontageImage_Layout(t *testing.T) {
	ds, err := dataset.BuildDataset(3, 6, 5, dataset.NewSource(4))
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	canvas, err := MontageImage(ds, MontageOptions{Columns: 2, Scale: 2})
	if err != nil {
		t.Fatalf("MontageImage failed: %v", err)
	}

	// 2 columns of 12px tiles and 2 rows of 10px tiles, plus separators.
	if canvas.Bounds().Dx() != 27 || canvas.Bounds().Dy() != 23 {
		t.Fatalf("bounds: got %v, want 27x23", canvas.Bounds())
	}

	if r, g, b := rgbaAt(canvas.At(0, 0)); r != 0x80 || g != 0x80 || b != 0x80 {
		t.Errorf("grid pixel: got (%d,%d,%d), want (128,128,128)", r, g, b)
	}
	// Fourth slot is empty and keeps the grid colour.
	if r, g, b := rgbaAt(canvas.At(14, 12)); r != 0x80 || g != 0x80 || b != 0x80 {
		t.Errorf("empty slot: got (%d,%d,%d), want (128,128,128)", r, g, b)
	}
	// Cell (0,0) is always background.
	if r, g, b := rgbaAt(canvas.At(1, 1)); r != 0 || g != 0 || b != 0 {
		t.Errorf("background: got (%d,%d,%d), want (0,0,0)", r, g, b)
	}

	for i := 0; i < 3; i++ {
		rect := ds.Rectangles[i]
		col, row := i%2, i/2
		px := 1 + col*13 + rect.X0*2
		py := 1 + row*11 + rect.Y0*2

		want := [3]uint8{0x17, 0xBE, 0xBB}
		if ds.Labels[i] == 1 {
			want = [3]uint8{0xE4, 0x57, 0x2E}
		}
		r, g, b := rgbaAt(canvas.At(px, py))
		if [3]uint8{r, g, b} != want {
			t.Errorf("sample %d corner: got (%d,%d,%d), want %v", i, r, g, b, want)
		}
	}
}

func TestMontageImage_Limit(t *testing.T) {
	ds, err := dataset.BuildDataset(20, 7, 7, dataset.NewSource(1))
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	canvas, err := MontageImage(ds, MontageOptions{Columns: 4, Scale: 1, Limit: 6})
	if err != nil {
		t.Fatalf("MontageImage failed: %v", err)
	}
	// 4 columns x 2 rows of 7px tiles
	if canvas.Bounds().Dx() != 4*7+5 || canvas.Bounds().Dy() != 2*7+3 {
		t.Errorf("bounds: got %v", canvas.Bounds())
	}
}

func TestMontage_Encodes(t *testing.T) {
	ds, err := dataset.BuildDataset(5, 14, 14, dataset.NewSource(2))
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	result, err := Montage(ds, MontageOptions{ShowIndices: true})
	if err != nil {
		t.Fatalf("Montage failed: %v", err)
	}
	// Defaults: 5 columns (fewer samples than 8), scale 4
	if result.Width != 5*56+6 || result.Height != 56+2 {
		t.Errorf("dimensions: got %dx%d", result.Width, result.Height)
	}
	decodeResult(t, result)
}

func TestMontage_Errors(t *testing.T) {
	ds, err := dataset.BuildDataset(2, 6, 6, dataset.NewSource(2))
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	tests := []struct {
		name string
		ds   *dataset.Dataset
		opts MontageOptions
	}{
		{"nil dataset", nil, MontageOptions{}},
		{"bad tall color", ds, MontageOptions{TallColor: "#GGGGGG"}},
		{"bad grid color", ds, MontageOptions{GridColor: "#12345"}},
		{"negative scale", ds, MontageOptions{Scale: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Montage(tt.ds, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    [3]uint8
		wantErr bool
	}{
		{"#FF0000", [3]uint8{255, 0, 0}, false},
		{"#00ff00", [3]uint8{0, 255, 0}, false},
		{"0000FF", [3]uint8{0, 0, 255}, false},
		{"#FFF", [3]uint8{255, 255, 255}, false},
		{"", [3]uint8{}, true},
		{"#GGGGGG", [3]uint8{}, true},
		{"#12345", [3]uint8{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := parseHexColor(tt.hex)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			r, g, b := c.RGB255()
			if [3]uint8{r, g, b} != tt.want {
				t.Errorf("got (%d,%d,%d), want %v", r, g, b, tt.want)
			}
		})
	}
}

func TestSaveMontage(t *testing.T) {
	ds, err := dataset.BuildDataset(4, 7, 7, dataset.NewSource(12))
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "montage.png")
	if err := SaveMontage(path, ds, MontageOptions{Columns: 2, Scale: 2}); err != nil {
		t.Fatalf("SaveMontage failed: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2*14+3 || b.Dy() != 2*14+3 {
		t.Errorf("size: got %dx%d, want 31x31", b.Dx(), b.Dy())
	}

	if err := SaveMontage(filepath.Join(t.TempDir(), "montage.unknown"), ds, MontageOptions{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
