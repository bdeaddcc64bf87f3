package dataset

// Image is a dense row-major grid of cell values. Generated images only hold
// 0 (background) and 1 (outline).
type Image struct {
	Width  int
	Height int
	Pix    []float64
}

// NewImage returns a zeroed width x height image.
func NewImage(width, height int) Image {
	return Image{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the value at column x, row y. Out-of-range coordinates read as 0.
func (m Image) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Pix[y*m.Width+x]
}

// Set writes v at column x, row y. Out-of-range coordinates are ignored.
func (m Image) Set(x, y int, v float64) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Clear resets every cell to 0.
func (m Image) Clear() {
	for i := range m.Pix {
		m.Pix[i] = 0
	}
}

// Clone returns a deep copy of the image.
func (m Image) Clone() Image {
	pix := make([]float64, len(m.Pix))
	copy(pix, m.Pix)
	return Image{Width: m.Width, Height: m.Height, Pix: pix}
}

// Count returns the number of non-zero cells.
func (m Image) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Rectangle holds the two corners of a stamped outline.
//
// (X0, Y0) is the top-left corner and (X1, Y1) the bottom-right corner; both
// corners lie on the outline.
type Rectangle struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Width is X1 - X0.
func (r Rectangle) Width() int { return r.X1 - r.X0 }

// Height is Y1 - Y0.
func (r Rectangle) Height() int { return r.Y1 - r.Y0 }

// Square reports whether the rectangle is degenerate (height equals width).
func (r Rectangle) Square() bool { return r.Width() == r.Height() }

// Label returns 1 for a tall rectangle and 0 otherwise.
func (r Rectangle) Label() float64 {
	if r.Height() > r.Width() {
		return 1
	}
	return 0
}
