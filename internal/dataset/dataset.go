package dataset

import (
	"gonum.org/v1/gonum/mat"
)

// Dataset is a fully materialized, index-aligned set of labelled images.
//
// Images[i], Labels[i] and Rectangles[i] always describe the same sample.
// A Dataset must not be mutated after construction.
type Dataset struct {
	Width      int
	Height     int
	Images     []Image
	Labels     []float64
	Rectangles []Rectangle

	float32 bool
}

func newDataset(opts Options) *Dataset {
	return &Dataset{
		Width:      opts.Width,
		Height:     opts.Height,
		Images:     make([]Image, opts.Num),
		Labels:     make([]float64, opts.Num),
		Rectangles: make([]Rectangle, opts.Num),
		float32:    opts.Float32,
	}
}

func (d *Dataset) set(i int, img Image, rect Rectangle) {
	d.Images[i] = img
	d.Rectangles[i] = rect
	d.Labels[i] = rect.Label()
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Images) }

// Features returns each image flattened row-major into a vector of length
// Width*Height. The returned slices are copies.
func (d *Dataset) Features() [][]float64 {
	out := make([][]float64, len(d.Images))
	for i, img := range d.Images {
		out[i] = d.flatten(img)
	}
	return out
}

func (d *Dataset) flatten(img Image) []float64 {
	v := make([]float64, len(img.Pix))
	copy(v, img.Pix)
	if d.float32 {
		for i := range v {
			v[i] = float64(float32(v[i]))
		}
	}
	return v
}

// Matrix returns the features as an N x (Width*Height) matrix, one sample per row.
func (d *Dataset) Matrix() *mat.Dense {
	cols := d.Width * d.Height
	data := make([]float64, 0, len(d.Images)*cols)
	for _, img := range d.Images {
		data = append(data, d.flatten(img)...)
	}
	return mat.NewDense(len(d.Images), cols, data)
}

// LabelVector returns the labels as a column vector.
func (d *Dataset) LabelVector() *mat.VecDense {
	labels := make([]float64, len(d.Labels))
	copy(labels, d.Labels)
	return mat.NewVecDense(len(labels), labels)
}

// ClassCounts returns the number of tall (label 1) and wide (label 0) samples.
func (d *Dataset) ClassCounts() (tall, wide int) {
	for _, l := range d.Labels {
		if l == 1 {
			tall++
		} else {
			wide++
		}
	}
	return tall, wide
}
