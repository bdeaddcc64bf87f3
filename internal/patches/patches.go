// Package patches extracts sliding-window patches from rectangle images.
//
// A convolutional kernel compares images patch by patch, so the distinct
// patches observed in the training images are a natural initial set of
// inducing patches. Binary outline images contain very few distinct patches,
// which keeps that set small.
package patches

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// Extract returns every ph x pw window of img with stride 1.
//
// Windows are ordered row-major by their top-left corner and each patch is
// flattened row-major, so the result has (Height-ph+1)*(Width-pw+1) patches
// of length ph*pw.
func Extract(img dataset.Image, ph, pw int) ([][]float64, error) {
	if ph < 1 || pw < 1 {
		return nil, fmt.Errorf("patch shape must be positive, got %dx%d", ph, pw)
	}
	if ph > img.Height || pw > img.Width {
		return nil, fmt.Errorf("patch %dx%d does not fit a %dx%d image", ph, pw, img.Height, img.Width)
	}

	rows := img.Height - ph + 1
	cols := img.Width - pw + 1
	out := make([][]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := make([]float64, 0, ph*pw)
			for dy := 0; dy < ph; dy++ {
				p = append(p, img.Pix[(y+dy)*img.Width+x:(y+dy)*img.Width+x+pw]...)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// Unique removes duplicate patches and sorts the rest lexicographically.
func Unique(patches [][]float64) [][]float64 {
	sorted := make([][]float64, len(patches))
	copy(sorted, patches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compare(sorted[i], sorted[j]) < 0
	})

	out := make([][]float64, 0, len(sorted))
	for i, p := range sorted {
		if i > 0 && compare(p, sorted[i-1]) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func compare(a, b []float64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return len(a) - len(b)
}

// InducingPatches returns the distinct ph x pw patches across every image in
// ds, one patch per row.
func InducingPatches(ds *dataset.Dataset, ph, pw int) (*mat.Dense, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	var all [][]float64
	for i, img := range ds.Images {
		p, err := Extract(img, ph, pw)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		all = append(all, p...)
	}

	unique := Unique(all)
	data := make([]float64, 0, len(unique)*ph*pw)
	for _, p := range unique {
		data = append(data, p...)
	}
	return mat.NewDense(len(unique), ph*pw, data), nil
}
