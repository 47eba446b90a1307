package spectrum

import "time"

// PointCount is the number of wavelength rows in a well-formed instrument
// file. Anything else is a hard validation failure.
const PointCount = 701

// Point is one (wavelength, intensity) row of a spectrum table.
type Point struct {
	Wavelength int
	Value      float64
}

// Spectrum is the validated contents of one instrument file. Blanks and
// samples share this shape; they differ only in role.
type Spectrum struct {
	Path       string
	AcquiredAt time.Time
	Points     []Point
}

// Wavelengths returns the ordered wavelength set of the spectrum.
func (s *Spectrum) Wavelengths() []int {
	out := make([]int, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Wavelength
	}
	return out
}
