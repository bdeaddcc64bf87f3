package imaging

import (
	"fmt"
	"os"
	"sync"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// DefaultThreshold separates outline from background when loading images.
const DefaultThreshold uint8 = 128

// MaskCache provides thread-safe caching of masks loaded from disk.
//
// Masks are keyed by path and threshold. Once a mask is loaded, subsequent
// Load calls with the same key return a copy of the cached mask without disk
// I/O.
//
// # Memory Management
//
// Cached masks remain in memory until explicitly removed via Evict() or
// Clear().
type MaskCache struct {
	mu    sync.RWMutex
	masks map[maskKey]dataset.Image
}

type maskKey struct {
	path      string
	threshold uint8
}

// NewMaskCache creates an empty cache.
func NewMaskCache() *MaskCache {
	return &MaskCache{
		masks: make(map[maskKey]dataset.Image),
	}
}

// Load returns the mask for path, reading it from disk on first use.
//
// The returned mask is a copy; callers may modify it freely.
func (c *MaskCache) Load(path string, threshold uint8) (dataset.Image, error) {
	key := maskKey{path: path, threshold: threshold}

	c.mu.RLock()
	if m, ok := c.masks[key]; ok {
		c.mu.RUnlock()
		return m.Clone(), nil
	}
	c.mu.RUnlock()

	m, err := LoadMask(path, threshold)
	if err != nil {
		return dataset.Image{}, err
	}

	c.mu.Lock()
	c.masks[key] = m
	c.mu.Unlock()

	return m.Clone(), nil
}

// Clear removes every cached mask.
func (c *MaskCache) Clear() {
	c.mu.Lock()
	c.masks = make(map[maskKey]dataset.Image)
	c.mu.Unlock()
}

// Evict removes every cached mask loaded from path.
func (c *MaskCache) Evict(path string) {
	c.mu.Lock()
	for k := range c.masks {
		if k.path == path {
			delete(c.masks, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of cached masks.
func (c *MaskCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.masks)
}

// LoadMask reads a PNG, JPEG or GIF file and binarizes it: pixels whose
// luminance is at least threshold become 1, all others 0.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be decoded
//   - Returns error if the image is smaller than dataset.MinDimension
func LoadMask(path string, threshold uint8) (dataset.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return dataset.Image{}, fmt.Errorf("failed to open image: %w", err)
	}

	src, err := imaging.Open(path)
	if err != nil {
		return dataset.Image{}, fmt.Errorf("failed to decode image: %w", err)
	}

	gray := segment.Threshold(src, threshold)
	b := gray.Bounds()
	if b.Dx() < dataset.MinDimension || b.Dy() < dataset.MinDimension {
		return dataset.Image{}, fmt.Errorf("image %dx%d is smaller than %dx%d",
			b.Dx(), b.Dy(), dataset.MinDimension, dataset.MinDimension)
	}

	mask := dataset.NewImage(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y > 0 {
				mask.Set(x, y, 1)
			}
		}
	}
	return mask, nil
}

// Downscale reduces a mask rendered at an integer scale back to cell
// resolution by sampling the top-left pixel of every block.
func Downscale(img dataset.Image, scale int) (dataset.Image, error) {
	if scale < 1 || img.Width%scale != 0 || img.Height%scale != 0 {
		return dataset.Image{}, fmt.Errorf("scale %d does not divide %dx%d", scale, img.Width, img.Height)
	}
	out := dataset.NewImage(img.Width/scale, img.Height/scale)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.Set(x, y, img.At(x*scale, y*scale))
		}
	}
	return out, nil
}
