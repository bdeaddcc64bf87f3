// Package imaging renders rectangle masks to images and reads them back.
//
// Masks are dataset.Image values: row-major grids where 1 marks an outline
// cell and 0 the background. This package converts them to standard Go
// image types, scales them with nearest-neighbour sampling so cells stay
// square, tiles whole datasets into labelled montages, and binarizes image
// files back into masks.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. A mask rendered at scale s
// maps cell (x, y) to the pixel block [x*s, (x+1)*s) x [y*s, (y+1)*s).
//
// # Thread Safety
//
// MaskCache is safe for concurrent use. Rendering functions are stateless.
//
// # Color Representation
//
// Colors are given as hex strings "#RRGGBB" (or "#RGB"). Montage tiles tint
// outline cells by label and blend fractional cell values in Lab space.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Scale factors below 1
//   - Malformed hex colors
//   - File I/O and decoding errors during loading
//   - Encoding errors during output
package imaging
