package waveform

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/RMahshie/seisview/pkg/models"
)

var (
	// ErrEmptySeries is returned when there is nothing to transform
	ErrEmptySeries = errors.New("empty or degenerate series")
	// ErrTransformFailed wraps numeric failures during the transform
	ErrTransformFailed = errors.New("spectral transform failed")
)

// NextPowerOfTwo returns the smallest power of two >= n
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Spectrum returns the magnitude spectrum of points sampled every deltaT
// seconds. Values are zero-padded to the next power of two before the forward
// transform, and bin k is placed at k / (deltaT * (N-1)) Hz. The output has
// one entry per padded sample; callers drop the DC bin and keep the half up to
// Nyquist, see TrimToNyquist.
func Spectrum(points []models.Point, deltaT float64) (spec []models.Point, err error) {
	if len(points) == 0 {
		return nil, ErrEmptySeries
	}
	if deltaT <= 0 || math.IsNaN(deltaT) || math.IsInf(deltaT, 0) {
		return nil, ErrInvalidDeltaT
	}

	n := NextPowerOfTwo(len(points))
	if n < 2 {
		return nil, ErrEmptySeries
	}

	values := make([]float64, n)
	for i, p := range points {
		values[i] = p.Y
	}
	if floats.HasNaN(values) || hasInf(values) {
		return nil, fmt.Errorf("%w: input contains non-finite values", ErrTransformFailed)
	}

	defer func() {
		if r := recover(); r != nil {
			spec = nil
			err = fmt.Errorf("%w: %v", ErrTransformFailed, r)
		}
	}()

	bins := fft.FFTReal(values)
	if len(bins) != n {
		return nil, fmt.Errorf("%w: expected %d bins, got %d", ErrTransformFailed, n, len(bins))
	}

	step := 1 / (deltaT * float64(n-1))
	spec = make([]models.Point, n)
	for i, c := range bins {
		mag := cmplx.Abs(c)
		if math.IsNaN(mag) || math.IsInf(mag, 0) {
			return nil, fmt.Errorf("%w: non-finite magnitude at bin %d", ErrTransformFailed, i)
		}
		spec[i] = models.Point{X: float64(i) * step, Y: mag}
	}

	return spec, nil
}

// TrimToNyquist drops the zero-frequency bin and everything above the Nyquist
// bin, keeping bins 1..N/2.
func TrimToNyquist(spec []models.Point) []models.Point {
	if len(spec) < 2 {
		return nil
	}
	half := len(spec) / 2
	out := make([]models.Point, half)
	copy(out, spec[1:half+1])
	return out
}

// PeakFrequency returns the frequency of the largest magnitude in spec
func PeakFrequency(spec []models.Point) (float64, bool) {
	if len(spec) == 0 {
		return 0, false
	}
	mags := make([]float64, len(spec))
	for i, p := range spec {
		mags[i] = p.Y
	}
	return spec[floats.MaxIdx(mags)].X, true
}

func hasInf(values []float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
