// Package dataset generates the synthetic "rectangles" classification dataset.
//
// Every sample is a binary image containing exactly one unfilled, axis-aligned
// rectangle outline placed strictly inside the image border. The label is 1
// when the rectangle is taller than it is wide and 0 when it is wider than it
// is tall. Square rectangles are never emitted: they are discarded and
// resampled, up to a bounded number of attempts per sample.
//
// # Coordinate System
//
// Images are row-major grids of float64 with (0,0) at the top-left corner:
//   - X: column index (0 = leftmost)
//   - Y: row index (0 = topmost)
//
// A Rectangle's Width is X1-X0 and its Height is Y1-Y0.
//
// # Outline Footprint
//
// GenerateRectangle draws columns X0 and X1 over rows [Y0, Y1), row Y0 over
// columns [X0, X1) and row Y1 over columns [X0, X1]. The bottom edge is one
// cell wider than the top edge. Other implementations must reproduce this
// footprint exactly to produce identical datasets.
//
// # Determinism
//
// Generation consumes a caller supplied Source and nothing else, so a fixed
// seed always yields the same dataset. BuildDatasetParallel derives one
// independent stream per sample index, which makes its output independent of
// the number of workers.
//
// # Error Handling
//
// Construction either returns a complete, index-aligned Dataset or an error:
//   - ErrConfiguration (as *ConfigError): dimensions below MinDimension,
//     non-positive sample counts or attempt limits
//   - ErrGenerationExhausted (as *ExhaustedError): no non-square rectangle was
//     found within the attempt limit for one sample
//
// Partial datasets are never returned.
package dataset
