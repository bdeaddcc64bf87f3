package dataset

import (
	"fmt"
	"math/rand/v2"
)

const (
	// MinDimension is the smallest width or height that leaves room for a
	// rectangle with a one-cell margin on every side.
	MinDimension = 5

	// DefaultMaxAttempts bounds the resampling loop for a single sample.
	DefaultMaxAttempts = 1000
)

// Source is the randomness consumed by the generator. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a uniform integer in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// NewSource returns a PCG-backed Source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// sampleSource returns the independent stream used for one sample index by
// BuildDatasetParallel.
func sampleSource(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)+1))
}

// Options controls dataset construction.
type Options struct {
	// Num is the number of samples to generate. Must be positive.
	Num int

	// Width and Height are the image dimensions. Both must be at least
	// MinDimension.
	Width  int
	Height int

	// MaxAttempts bounds the attempts per sample. Zero selects
	// DefaultMaxAttempts.
	MaxAttempts int

	// Float32 rounds every feature through float32.
	Float32 bool
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// Validate checks the options without consuming any randomness.
func (o Options) Validate() error {
	o = o.withDefaults()
	if o.Num <= 0 {
		return configErrorf(o.Num, o.Width, o.Height, "sample count must be positive")
	}
	if o.Width < MinDimension || o.Height < MinDimension {
		return configErrorf(o.Num, o.Width, o.Height, "width and height must be at least %d", MinDimension)
	}
	if o.MaxAttempts < 0 {
		return configErrorf(o.Num, o.Width, o.Height, "max attempts must be positive, got %d", o.MaxAttempts)
	}
	return nil
}

// GenerateRectangle stamps the outline of the rectangle (x0,y0)-(x1,y1) onto img.
//
// Columns x0 and x1 are set for rows [y0, y1), row y0 for columns [x0, x1)
// and row y1 for columns [x0, x1]. The corners must satisfy
// 1 <= x0 < x1 <= Width-2 and 1 <= y0 < y1 <= Height-2.
func GenerateRectangle(img Image, x0, y0, x1, y1 int) error {
	if x0 < 1 || x1 > img.Width-2 || x0 >= x1 || y0 < 1 || y1 > img.Height-2 || y0 >= y1 {
		return fmt.Errorf("rectangle (%d,%d)-(%d,%d) is not inside the interior of a %dx%d image",
			x0, y0, x1, y1, img.Width, img.Height)
	}

	for y := y0; y < y1; y++ {
		img.Set(x0, y, 1)
		img.Set(x1, y, 1)
	}
	for x := x0; x < x1; x++ {
		img.Set(x, y0, 1)
	}
	for x := x0; x <= x1; x++ {
		img.Set(x, y1, 1)
	}
	return nil
}

// SampleRandomRectangle draws a random interior rectangle and stamps it onto img.
//
// The corners are drawn in order: x0 from [1, W-4], y0 from [1, H-4], x1 from
// [x0+2, W-2] and y1 from [y0+2, H-2], all inclusive. Width and height are
// therefore at least 2.
func SampleRandomRectangle(img Image, rng Source) (Rectangle, error) {
	if img.Width < MinDimension || img.Height < MinDimension {
		return Rectangle{}, configErrorf(1, img.Width, img.Height, "width and height must be at least %d", MinDimension)
	}

	x0 := uniform(rng, 1, img.Width-4)
	y0 := uniform(rng, 1, img.Height-4)
	x1 := uniform(rng, x0+2, img.Width-2)
	y1 := uniform(rng, y0+2, img.Height-2)

	r := Rectangle{X0: x0, Y0: y0, X1: x1, Y1: y1}
	if err := GenerateRectangle(img, x0, y0, x1, y1); err != nil {
		return Rectangle{}, err
	}
	return r, nil
}

// uniform returns an integer in the inclusive range [lo, hi].
func uniform(rng Source, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// BuildDataset generates num labelled width x height images with the default
// attempt limit.
func BuildDataset(num, width, height int, rng Source) (*Dataset, error) {
	return BuildDatasetWithOptions(Options{Num: num, Width: width, Height: height}, rng)
}

// BuildDatasetWithOptions generates a dataset from a single random stream.
//
// Samples are generated in index order. The first failure aborts construction
// and no dataset is returned.
func BuildDatasetWithOptions(opts Options, rng Source) (*Dataset, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ds := newDataset(opts)
	for i := 0; i < opts.Num; i++ {
		img, rect, err := sampleNonSquare(i, opts, rng)
		if err != nil {
			return nil, err
		}
		ds.set(i, img, rect)
	}
	return ds, nil
}

// sampleNonSquare resamples until the rectangle is not square or the attempt
// limit is reached.
func sampleNonSquare(index int, opts Options, rng Source) (Image, Rectangle, error) {
	img := NewImage(opts.Width, opts.Height)
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		rect, err := SampleRandomRectangle(img, rng)
		if err != nil {
			return Image{}, Rectangle{}, err
		}
		if rect.Square() {
			img.Clear()
			continue
		}
		return img, rect, nil
	}
	return Image{}, Rectangle{}, &ExhaustedError{
		Index:    index,
		Width:    opts.Width,
		Height:   opts.Height,
		Attempts: opts.MaxAttempts,
	}
}
