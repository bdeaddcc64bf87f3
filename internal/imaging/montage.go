package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// MontageOptions controls how a dataset is tiled into a single image.
type MontageOptions struct {
	// Columns is the number of tiles per row. Zero selects min(len, 8).
	Columns int

	// Scale is the integer enlargement of each tile. Zero selects 4.
	Scale int

	// Limit caps the number of samples drawn. Zero draws every sample.
	Limit int

	// TallColor and WideColor tint outline cells by label (hex "#RRGGBB").
	TallColor string
	WideColor string

	// Background fills cells that are not part of an outline.
	Background string

	// GridColor fills the one-pixel separators between tiles.
	GridColor string

	// ShowIndices writes each sample index in the corner of its tile.
	ShowIndices bool
}

func (o MontageOptions) withDefaults(n int) MontageOptions {
	if o.Limit > 0 && o.Limit < n {
		n = o.Limit
	}
	if o.Columns == 0 {
		o.Columns = 8
	}
	if o.Columns > n {
		o.Columns = n
	}
	if o.Scale == 0 {
		o.Scale = 4
	}
	if o.TallColor == "" {
		o.TallColor = "#E4572E"
	}
	if o.WideColor == "" {
		o.WideColor = "#17BEBB"
	}
	if o.Background == "" {
		o.Background = "#000000"
	}
	if o.GridColor == "" {
		o.GridColor = "#808080"
	}
	o.Limit = n
	return o
}

// Montage tiles the samples of ds into a grid, tinting each outline by its
// label, and encodes the result as a base64 PNG.
//
// Tiles are laid out row-major in dataset order and separated by one-pixel
// grid lines, including a border around the whole montage.
func Montage(ds *dataset.Dataset, opts MontageOptions) (*RenderResult, error) {
	canvas, err := MontageImage(ds, opts)
	if err != nil {
		return nil, err
	}
	return encodeResult(canvas)
}

// SaveMontage writes the montage of ds to path. The format follows the
// extension.
func SaveMontage(path string, ds *dataset.Dataset, opts MontageOptions) error {
	canvas, err := MontageImage(ds, opts)
	if err != nil {
		return err
	}
	if err := imaging.Save(canvas, path); err != nil {
		return fmt.Errorf("failed to save montage: %w", err)
	}
	return nil
}

// MontageImage builds the montage without encoding it.
func MontageImage(ds *dataset.Dataset, opts MontageOptions) (*image.RGBA, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("montage requires at least one sample")
	}
	opts = opts.withDefaults(ds.Len())
	if opts.Columns < 1 || opts.Scale < 1 {
		return nil, fmt.Errorf("columns and scale must be positive, got %d and %d", opts.Columns, opts.Scale)
	}

	tall, err := parseHexColor(opts.TallColor)
	if err != nil {
		return nil, fmt.Errorf("tall color: %w", err)
	}
	wide, err := parseHexColor(opts.WideColor)
	if err != nil {
		return nil, fmt.Errorf("wide color: %w", err)
	}
	bg, err := parseHexColor(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("background color: %w", err)
	}
	grid, err := parseHexColor(opts.GridColor)
	if err != nil {
		return nil, fmt.Errorf("grid color: %w", err)
	}

	n := opts.Limit
	cols := opts.Columns
	rows := (n + cols - 1) / cols
	tileW := ds.Width * opts.Scale
	tileH := ds.Height * opts.Scale

	canvas := image.NewRGBA(image.Rect(0, 0, cols*tileW+cols+1, rows*tileH+rows+1))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: toRGBA(grid)}, image.Point{}, draw.Src)

	for i := 0; i < n; i++ {
		fg := wide
		if ds.Labels[i] == 1 {
			fg = tall
		}
		tile := tint(ds.Images[i], fg, bg)

		col, row := i%cols, i/cols
		x0 := 1 + col*(tileW+1)
		y0 := 1 + row*(tileH+1)
		dst := image.Rect(x0, y0, x0+tileW, y0+tileH)
		draw.NearestNeighbor.Scale(canvas, dst, tile, tile.Bounds(), draw.Src, nil)
	}

	if opts.ShowIndices {
		labelTiles(canvas, n, cols, tileW, tileH)
	}
	return canvas, nil
}

// tint colours a mask: 0 maps to bg, 1 to fg, and intermediate values blend
// in Lab space.
func tint(img dataset.Image, fg, bg colorful.Color) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	fgc, bgc := toRGBA(fg), toRGBA(bg)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			v := img.At(x, y)
			switch {
			case v <= 0:
				out.SetRGBA(x, y, bgc)
			case v >= 1:
				out.SetRGBA(x, y, fgc)
			default:
				out.SetRGBA(x, y, toRGBA(bg.BlendLab(fg, v).Clamped()))
			}
		}
	}
	return out
}

// parseHexColor parses "#RRGGBB" or "#RGB".
func parseHexColor(hex string) (colorful.Color, error) {
	if len(hex) == 0 {
		return colorful.Color{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return colorful.Color{}, fmt.Errorf("invalid hex color length %q", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return c, nil
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
