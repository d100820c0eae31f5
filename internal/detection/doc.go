// Package detection locates the document quadrilateral in a photo.
//
// Two backends implement the Detector interface:
//
//   - ContourDetector searches the image's edge map for the largest convex
//     four-sided contour. It is pure Go and always available.
//   - ModelDetector asks an external rectangle-inference service over HTTP
//     and falls back to another Detector when the call fails.
//
// Select picks one at startup from configuration; callers only see the
// interface.
//
// # Contract
//
// Detect never fails for a decoded image. When nothing is found the result
// carries Found=false and the full-frame default quad, so a caller can always
// show an adjustable boundary.
//
// # Coordinate System
//
// Results are normalized: (0,0) is the top-left corner, (1,1) the
// bottom-right, Y increases downward. Corners are assigned to roles with
// geometry.OrderPoints.
//
// # Limitations
//
// The contour search works best when the document contrasts with its
// background and all four edges are visible. Documents that touch the image
// border on more than one side, or that are rotated close to 45 degrees, can
// be missed or get swapped corner roles.
package detection
