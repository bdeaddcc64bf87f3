package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// RenderResult contains a rendered image encoded as base64 PNG.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// ToGray converts a mask to an 8-bit grayscale image. Cell values are clamped
// to [0, 1] and scaled to [0, 255], so outline cells are white.
func ToGray(img dataset.Image) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			v := img.At(x, y)
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			out.SetGray(x, y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return out
}

// Scale enlarges a mask by an integer factor using nearest-neighbour
// sampling, which keeps every cell a crisp square block.
func Scale(img dataset.Image, scale int) (image.Image, error) {
	if scale < 1 {
		return nil, fmt.Errorf("scale must be at least 1, got %d", scale)
	}
	gray := ToGray(img)
	if scale == 1 {
		return gray, nil
	}
	return imaging.Resize(gray, img.Width*scale, img.Height*scale, imaging.NearestNeighbor), nil
}

// Render scales a mask and encodes it as a base64 PNG.
func Render(img dataset.Image, scale int) (*RenderResult, error) {
	scaled, err := Scale(img, scale)
	if err != nil {
		return nil, err
	}
	return encodeResult(scaled)
}

// SavePNG writes a scaled mask to path. The format follows the extension.
func SavePNG(path string, img dataset.Image, scale int) error {
	scaled, err := Scale(img, scale)
	if err != nil {
		return err
	}
	if err := imaging.Save(scaled, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

func encodeResult(img image.Image) (*RenderResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &RenderResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
