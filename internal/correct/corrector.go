package correct

import (
	"fmt"

	"uvabs/internal/pipeline"
	"uvabs/internal/spectrum"
)

// Row is one corrected (wavelength, value) pair.
type Row struct {
	Wavelength int
	Value      float64
}

// Corrected is the finished result for one sample: 701 corrected rows tagged
// with the water sample and method identifiers. It is immutable once built and
// is either persisted whole or discarded.
type Corrected struct {
	WaterSampleID int64
	MethodID      int
	Rows          []Row
}

// Correct joins a sample spectrum with its assigned blank on wavelength and
// applies the physical correction per row:
//
//	corrected = (sample - blank) * dilution / cuvetteLenCM
//
// The inner join must produce exactly 701 rows; losing rows means the sample
// and blank disagree on the wavelength set, which indicates a format or
// instrument-version mismatch.
func Correct(sample, blank *spectrum.Spectrum, cuvetteLenCM, dilution int, waterSampleID int64, methodID int) (*Corrected, error) {
	if cuvetteLenCM <= 0 {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, "corrector", "correct",
			fmt.Sprintf("cuvette length must be positive, got %d", cuvetteLenCM), nil)
	}
	if dilution <= 0 {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, "corrector", "correct",
			fmt.Sprintf("dilution must be positive, got %d", dilution), nil)
	}

	blankValues := make(map[int]float64, len(blank.Points))
	for _, p := range blank.Points {
		blankValues[p.Wavelength] = p.Value
	}

	rows := make([]Row, 0, spectrum.PointCount)
	for _, p := range sample.Points {
		blankValue, ok := blankValues[p.Wavelength]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			Wavelength: p.Wavelength,
			Value:      (p.Value - blankValue) * float64(dilution) / float64(cuvetteLenCM),
		})
	}

	if len(rows) != spectrum.PointCount {
		return nil, pipeline.Wrap(pipeline.ErrAlignment, "corrector", "join",
			fmt.Sprintf("sample %s and blank %s join to %d rows (expected %d)",
				sample.Path, blank.Path, len(rows), spectrum.PointCount), nil)
	}

	return &Corrected{
		WaterSampleID: waterSampleID,
		MethodID:      methodID,
		Rows:          rows,
	}, nil
}
