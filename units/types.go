package units

import "fmt"

// Frame is one grayscale image, row-major.
type Frame struct {
	Index  int
	Width  int
	Height int
	Pixels []uint8
}

// At returns the pixel at (x, y).
func (f Frame) At(x, y int) uint8 { return f.Pixels[y*f.Width+x] }

// Valid reports whether the pixel buffer matches the dimensions.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pixels) == f.Width*f.Height
}

// Detection is a region whose mean difference from the background exceeded
// the detector's threshold.
type Detection struct {
	Frame  int     `json:"frame"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Score  float64 `json:"score"`
}

func (d Detection) String() string {
	return fmt.Sprintf("frame=%d x=%d y=%d w=%d h=%d score=%.3f", d.Frame, d.X, d.Y, d.Width, d.Height, d.Score)
}
