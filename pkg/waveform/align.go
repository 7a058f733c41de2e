package waveform

import (
	"errors"
	"math"
	"time"

	"github.com/RMahshie/seisview/pkg/models"
)

var (
	// ErrInvalidWindow is returned when a window starts after it stops or a
	// record ends before it starts.
	ErrInvalidWindow = errors.New("invalid time window")
	// ErrInvalidDeltaT is returned for a non-positive sample interval
	ErrInvalidDeltaT = errors.New("sample interval must be positive")
	// ErrWindowTooLarge is returned when a window needs more than
	// MaxAlignedSamples samples at the record's interval
	ErrWindowTooLarge = errors.New("time window too large for sample interval")
)

// MaxAlignedSamples bounds the length of an aligned series
const MaxAlignedSamples = 1 << 22

// AlignPadded expresses rec on the grid [earliest, latest] with the record's
// own sample interval. Grid points before the record starts hold its first
// value and grid points after its data runs out hold its last value, so every
// record aligned to the same window gets the same length.
func AlignPadded(rec *models.Record, earliest, latest time.Time) ([]models.Point, error) {
	if err := checkAlignment(rec, earliest, latest); err != nil {
		return nil, err
	}

	dt := rec.DeltaT
	n := gridLength(latest.Sub(earliest).Seconds(), dt)
	offset := int(math.Round(rec.Start.Sub(earliest).Seconds() / dt))

	first := rec.Points[0].Y
	last := rec.Points[len(rec.Points)-1].Y

	out := make([]models.Point, n)
	for i := range out {
		j := i - offset
		var y float64
		switch {
		case j < 0:
			y = first
		case j >= len(rec.Points):
			y = last
		default:
			y = rec.Points[j].Y
		}
		out[i] = models.Point{X: float64(i) * dt, Y: y}
	}

	return out, nil
}

// AlignUnpadded crops rec to [earliest, latest] without adding samples. X is
// measured from earliest, so a record starting late keeps its leading gap.
func AlignUnpadded(rec *models.Record, earliest, latest time.Time) ([]models.Point, error) {
	if err := checkAlignment(rec, earliest, latest); err != nil {
		return nil, err
	}

	dt := rec.DeltaT
	startOffset := rec.Start.Sub(earliest).Seconds()
	span := latest.Sub(earliest).Seconds()
	// Half a sample of slack keeps float drift from dropping edge samples.
	eps := dt / 2

	out := make([]models.Point, 0, min(len(rec.Points), gridLength(span, dt)))
	for j, p := range rec.Points {
		x := startOffset + float64(j)*dt
		if x < -eps {
			continue
		}
		if x > span+eps {
			break
		}
		out = append(out, models.Point{X: x, Y: p.Y})
	}

	return out, nil
}

// AlignToWindow aligns rec to w in padded or unpadded mode
func AlignToWindow(rec *models.Record, w models.Window, padded bool) ([]models.Point, error) {
	if padded {
		return AlignPadded(rec, w.Start, w.Stop)
	}
	return AlignUnpadded(rec, w.Start, w.Stop)
}

func checkAlignment(rec *models.Record, earliest, latest time.Time) error {
	if rec == nil {
		return ErrInvalidWindow
	}
	if rec.DeltaT <= 0 || math.IsNaN(rec.DeltaT) || math.IsInf(rec.DeltaT, 0) {
		return ErrInvalidDeltaT
	}
	if earliest.After(latest) {
		return ErrInvalidWindow
	}
	if rec.Start.After(rec.End()) {
		return ErrInvalidWindow
	}
	// Compared as float so an oversized window can't overflow int
	if math.Round(latest.Sub(earliest).Seconds()/rec.DeltaT)+1 > MaxAlignedSamples {
		return ErrWindowTooLarge
	}
	return nil
}

// gridLength is the number of samples of interval dt covering span seconds.
// checkAlignment keeps it within MaxAlignedSamples.
func gridLength(span, dt float64) int {
	return int(math.Round(span/dt)) + 1
}
