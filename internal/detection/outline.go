package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// Bounds is an inclusive bounding box in cell coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left column (inclusive)
	Y1 int `json:"y1"` // Top row (inclusive)
	X2 int `json:"x2"` // Right column (inclusive)
	Y2 int `json:"y2"` // Bottom row (inclusive)
}

// Point is a cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Orientation names the shape of an outline's bounding box.
type Orientation string

const (
	Tall   Orientation = "tall"
	Wide   Orientation = "wide"
	Square Orientation = "square"
)

// Outline is a connected group of set cells with its bounding box.
type Outline struct {
	// Bounds encloses every cell of the outline.
	Bounds Bounds `json:"bounds"`

	// Width is Bounds.X2 - Bounds.X1, matching dataset.Rectangle.Width.
	Width int `json:"width"`

	// Height is Bounds.Y2 - Bounds.Y1, matching dataset.Rectangle.Height.
	Height int `json:"height"`

	// Pixels is the number of cells in the component.
	Pixels int `json:"pixels"`

	Orientation Orientation `json:"orientation"`

	// Confidence compares the cell count with the perimeter 2*(Width+Height)
	// of a one-cell outline. An exact outline scores 1.
	Confidence float64 `json:"confidence"`
}

// Rectangle returns the outline's corners in dataset form.
func (o Outline) Rectangle() dataset.Rectangle {
	return dataset.Rectangle{X0: o.Bounds.X1, Y0: o.Bounds.Y1, X1: o.Bounds.X2, Y1: o.Bounds.Y2}
}

// FindOutlines returns the 8-connected components of non-zero cells in img
// that contain at least minPixels cells, sorted by bounding box area (largest
// first).
//
// # Algorithm
//
//  1. Scan cells row by row
//  2. Flood-fill each unvisited set cell to collect its component
//  3. Compute the component's bounding box
//  4. Score rectangularity as 1 - |pixels - perimeter| / perimeter, clamped
//     to [0, 1]
func FindOutlines(img dataset.Image, minPixels int) []Outline {
	set := make([][]bool, img.Height)
	for y := 0; y < img.Height; y++ {
		set[y] = make([]bool, img.Width)
		for x := 0; x < img.Width; x++ {
			set[y][x] = img.At(x, y) != 0
		}
	}

	outlines := make([]Outline, 0)
	for _, component := range findComponents(set, img.Width, img.Height) {
		if len(component) < minPixels {
			continue
		}
		outlines = append(outlines, measure(component))
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].Width*outlines[i].Height > outlines[j].Width*outlines[j].Height
	})
	return outlines
}

func measure(component []Point) Outline {
	minX, minY := component[0].X, component[0].Y
	maxX, maxY := minX, minY
	for _, p := range component[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	w := maxX - minX
	h := maxY - minY

	confidence := 0.0
	if perimeter := 2 * (w + h); perimeter > 0 {
		confidence = 1.0 - math.Abs(float64(len(component)-perimeter))/float64(perimeter)
		confidence = math.Max(0, math.Min(1, confidence))
	}

	orientation := Square
	switch {
	case h > w:
		orientation = Tall
	case w > h:
		orientation = Wide
	}

	return Outline{
		Bounds:      Bounds{X1: minX, Y1: minY, X2: maxX, Y2: maxY},
		Width:       w,
		Height:      h,
		Pixels:      len(component),
		Orientation: orientation,
		Confidence:  confidence,
	}
}

// findComponents groups set cells into 8-connected components.
func findComponents(set [][]bool, width, height int) [][]Point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	components := make([][]Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if set[y][x] && !visited[y][x] {
				component := make([]Point, 0)
				floodFill(set, visited, x, y, width, height, &component)
				components = append(components, component)
			}
		}
	}
	return components
}

// floodFill collects the component containing (startX, startY) with an
// explicit stack.
func floodFill(set, visited [][]bool, startX, startY, width, height int, component *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !set[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*component = append(*component, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}
