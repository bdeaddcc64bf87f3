// Package detection recovers rectangle outlines from binary images.
//
// It is used to check generated samples and as the measurement step of the
// outline classifier: a generated image contains a single closed outline, so
// its bounding box gives back the stamped rectangle exactly.
//
// # Algorithm Overview
//
//  1. Component Finding: flood-fill groups 8-connected non-zero cells
//  2. Measurement: each component's bounding box gives width and height
//  3. Scoring: the cell count is compared with the outline perimeter
//
// # Coordinate System
//
// All coordinates use the dataset convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes are inclusive on both corners, so Width = X2 - X1
//
// # Confidence Scores
//
// Confidence is rectangularity in [0, 1]. A one-cell wide rectangle outline
// has exactly 2*(Width+Height) cells and scores 1.0. Filled blocks, specks and
// irregular blobs score lower.
//
// # Limitations
//
//   - Only axis-aligned outlines are measured
//   - Touching or overlapping outlines merge into one component
package detection
