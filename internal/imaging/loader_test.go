package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// saveMask writes a generated mask to a temp PNG and returns its path.
func saveMask(t *testing.T, mask dataset.Image, scale int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mask.png")
	if err := SavePNG(path, mask, scale); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	return path
}

func TestLoadMask_RoundTrip(t *testing.T) {
	mask := createMask(t)
	path := saveMask(t, mask, 1)

	loaded, err := LoadMask(path, DefaultThreshold)
	if err != nil {
		t.Fatalf("LoadMask failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Pix, mask.Pix) {
		t.Errorf("round trip mismatch:\ngot  %v\nwant %v", loaded.Pix, mask.Pix)
	}
}

func TestLoadMask_ScaledRoundTrip(t *testing.T) {
	mask := createMask(t)
	path := saveMask(t, mask, 3)

	loaded, err := LoadMask(path, DefaultThreshold)
	if err != nil {
		t.Fatalf("LoadMask failed: %v", err)
	}
	if loaded.Width != 30 || loaded.Height != 24 {
		t.Fatalf("dimensions: got %dx%d, want 30x24", loaded.Width, loaded.Height)
	}

	down, err := Downscale(loaded, 3)
	if err != nil {
		t.Fatalf("Downscale failed: %v", err)
	}
	if !reflect.DeepEqual(down.Pix, mask.Pix) {
		t.Error("downscaled mask does not match original")
	}
}

func TestLoadMask_Threshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 6, 6))
	img.SetGray(1, 1, color.Gray{Y: 100})
	img.SetGray(2, 2, color.Gray{Y: 200})

	path := filepath.Join(t.TempDir(), "gray.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("failed to encode: %v", err)
	}
	f.Close()

	low, err := LoadMask(path, 50)
	if err != nil {
		t.Fatalf("LoadMask failed: %v", err)
	}
	if low.Count() != 2 {
		t.Errorf("threshold 50: got %d set cells, want 2", low.Count())
	}

	high, err := LoadMask(path, 150)
	if err != nil {
		t.Fatalf("LoadMask failed: %v", err)
	}
	if high.Count() != 1 || high.At(2, 2) != 1 {
		t.Errorf("threshold 150: got %d set cells, want only (2,2)", high.Count())
	}
}

func TestLoadMask_Errors(t *testing.T) {
	if _, err := LoadMask("/nonexistent/path/image.png", DefaultThreshold); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMask(path, DefaultThreshold); err == nil {
		t.Error("expected error for invalid image")
	}

	tiny := saveMask(t, dataset.NewImage(4, 4), 1)
	if _, err := LoadMask(tiny, DefaultThreshold); err == nil {
		t.Error("expected error for image below minimum size")
	}
}

func TestDownscale_Invalid(t *testing.T) {
	if _, err := Downscale(dataset.NewImage(10, 10), 3); err == nil {
		t.Error("expected error when scale does not divide dimensions")
	}
	if _, err := Downscale(dataset.NewImage(10, 10), 0); err == nil {
		t.Error("expected error for scale 0")
	}
}

func TestMaskCache(t *testing.T) {
	cache := NewMaskCache()
	if cache == nil || cache.masks == nil {
		t.Fatal("NewMaskCache did not initialize")
	}

	path := saveMask(t, createMask(t), 1)

	first, err := cache.Load(path, DefaultThreshold)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	first.Set(0, 0, 1)

	second, err := cache.Load(path, DefaultThreshold)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if second.At(0, 0) != 0 {
		t.Error("cached mask was modified through a returned copy")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}

	if _, err := cache.Load(path, 10); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cache.Len() != 2 {
		t.Errorf("Len after second threshold: got %d, want 2", cache.Len())
	}

	cache.Evict(path)
	if cache.Len() != 0 {
		t.Errorf("Len after Evict: got %d, want 0", cache.Len())
	}

	if _, err := cache.Load(path, DefaultThreshold); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestMaskCache_Concurrent(t *testing.T) {
	cache := NewMaskCache()
	path := saveMask(t, createMask(t), 1)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path, DefaultThreshold); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
}

func TestMaskCache_MissingFile(t *testing.T) {
	cache := NewMaskCache()
	if _, err := cache.Load("/nonexistent/image.png", DefaultThreshold); err == nil {
		t.Error("expected error")
	}
	if cache.Len() != 0 {
		t.Errorf("failed load was cached")
	}
}
