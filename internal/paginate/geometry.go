package paginate

import (
	"errors"
	"fmt"
)

// PxPerMM is the CSS pixel density: 96 px per inch.
const PxPerMM = 96 / 25.4

// DefaultTolerance absorbs sub-pixel rounding in measured heights.
const DefaultTolerance = 0.5

// ErrInvalidGeometry is returned by Geometry.Validate.
var ErrInvalidGeometry = errors.New("invalid page geometry")

// Geometry is a page size in millimetres with a uniform margin.
type Geometry struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
	PxPerMM  float64
}

// A4 is the default page: 210x297 mm with 20 mm margins.
var A4 = Geometry{WidthMM: 210, HeightMM: 297, MarginMM: 20, PxPerMM: PxPerMM}

// ContentHeightPX is the usable height of a page in CSS pixels.
func (g Geometry) ContentHeightPX() float64 {
	return (g.HeightMM - 2*g.MarginMM) * g.pxPerMM()
}

// ContentWidthPX is the usable width of a page in CSS pixels.
func (g Geometry) ContentWidthPX() float64 {
	return (g.WidthMM - 2*g.MarginMM) * g.pxPerMM()
}

func (g Geometry) pxPerMM() float64 {
	if g.PxPerMM > 0 {
		return g.PxPerMM
	}
	return PxPerMM
}

// Validate checks that sizes are positive and margins leave room for content.
func (g Geometry) Validate() error {
	switch {
	case g.WidthMM <= 0 || g.HeightMM <= 0:
		return fmt.Errorf("%w: page size %gx%g mm must be positive", ErrInvalidGeometry, g.WidthMM, g.HeightMM)
	case g.MarginMM < 0:
		return fmt.Errorf("%w: margin %g mm is negative", ErrInvalidGeometry, g.MarginMM)
	case 2*g.MarginMM >= g.WidthMM || 2*g.MarginMM >= g.HeightMM:
		return fmt.Errorf("%w: margin %g mm leaves no content area on %gx%g mm", ErrInvalidGeometry, g.MarginMM, g.WidthMM, g.HeightMM)
	case g.PxPerMM < 0:
		return fmt.Errorf("%w: px/mm ratio %g is negative", ErrInvalidGeometry, g.PxPerMM)
	}
	return nil
}
