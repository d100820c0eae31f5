// Package imaging provides the raster stages shared by document detection
// and the MCP preview tools.
//
// It decodes input photos (PNG, JPEG, GIF, BMP, TIFF, WebP) upright using
// their EXIF orientation, caches decoded images by path, and builds the edge
// map the contour detector searches: downscale, bilateral smoothing, Canny
// edge detection and morphological closing. It also renders PNG previews of a
// detected quadrilateral or of the edge map itself.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Edge maps are produced in
// downscaled coordinates; EdgeMap returns the ratio that maps them back.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless and allocates its own output, so decoded images can be shared
// between goroutines as long as nobody mutates them.
//
// # Error Handling
//
// Decode failures are returned as apperr DECODE_ERROR values so the server can
// report them with a stable code. Preview encoding errors are wrapped with
// fmt.Errorf.
package imaging
