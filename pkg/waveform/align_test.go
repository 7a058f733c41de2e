package waveform

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/seisview/pkg/models"
)

var epoch = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

// makeRecord builds a record whose i-th value is f(i)
func makeRecord(start time.Time, n int, dt float64, f func(i int) float64) *models.Record {
	pts := make([]models.Point, n)
	for i := range pts {
		pts[i] = models.Point{X: float64(i) * dt, Y: f(i)}
	}
	return &models.Record{Channel: "HNZ", Station: "PASC", Start: start, DeltaT: dt, Points: pts}
}

func ramp(i int) float64 { return float64(i) + 1 }

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func TestAlignPadded_Identity(t *testing.T) {
	rec := makeRecord(epoch, 100, 0.01, ramp)

	out, err := AlignPadded(rec, rec.Start, rec.End())
	require.NoError(t, err)
	require.Len(t, out, rec.Len())

	for i, p := range out {
		assert.Equal(t, rec.Points[i].Y, p.Y, "value at %d", i)
		assert.InDelta(t, float64(i)*0.01, p.X, 1e-9)
	}
}

func TestAlignPadded_TwoRecordScenario(t *testing.T) {
	r1 := makeRecord(epoch, 100, 0.01, ramp)
	r2 := makeRecord(epoch.Add(500*time.Millisecond), 100, 0.01, func(i int) float64 { return -float64(i) - 1 })
	latest := epoch.Add(1490 * time.Millisecond)

	out1, err := AlignPadded(r1, epoch, latest)
	require.NoError(t, err)
	out2, err := AlignPadded(r2, epoch, latest)
	require.NoError(t, err)

	require.Len(t, out1, 150)
	require.Len(t, out2, 150)

	for i := 0; i < 100; i++ {
		assert.Equal(t, r1.Points[i].Y, out1[i].Y)
	}
	for i := 100; i < 150; i++ {
		assert.Equal(t, r1.Points[99].Y, out1[i].Y, "r1 trailing hold at %d", i)
	}
	for i := 0; i < 50; i++ {
		assert.Equal(t, r2.Points[0].Y, out2[i].Y, "r2 leading hold at %d", i)
	}
	for i := 50; i < 150; i++ {
		assert.Equal(t, r2.Points[i-50].Y, out2[i].Y)
	}
	assert.InDelta(t, 1.49, out2[149].X, 1e-9)
}

func TestAlignPadded_LengthOverWiderWindows(t *testing.T) {
	rec := makeRecord(epoch.Add(2*time.Second), 50, 0.02, ramp)

	tests := []struct {
		name   string
		before time.Duration
		after  time.Duration
	}{
		{name: "exact", before: 0, after: 0},
		{name: "leading pad", before: 400 * time.Millisecond, after: 0},
		{name: "trailing pad", before: 0, after: 1 * time.Second},
		{name: "both sides", before: 2 * time.Second, after: 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			earliest := rec.Start.Add(-tt.before)
			latest := rec.End().Add(tt.after)

			out, err := AlignPadded(rec, earliest, latest)
			require.NoError(t, err)

			want := int(math.Round(latest.Sub(earliest).Seconds()/rec.DeltaT)) + 1
			assert.Len(t, out, want)

			lead := int(math.Round(tt.before.Seconds() / rec.DeltaT))
			for i := 0; i < lead; i++ {
				assert.Equal(t, rec.Points[0].Y, out[i].Y)
			}
			trail := int(math.Round(tt.after.Seconds() / rec.DeltaT))
			for i := len(out) - trail; i < len(out); i++ {
				assert.Equal(t, rec.Points[rec.Len()-1].Y, out[i].Y)
			}
		})
	}
}

func TestAlignPadded_RecordStartsBeforeWindow(t *testing.T) {
	rec := makeRecord(epoch, 100, 0.01, ramp)

	out, err := AlignPadded(rec, epoch.Add(200*time.Millisecond), rec.End())
	require.NoError(t, err)
	require.Len(t, out, 80)
	assert.Equal(t, rec.Points[20].Y, out[0].Y)
	assert.Equal(t, 0.0, out[0].X)
}

func TestAlignUnpadded(t *testing.T) {
	rec := makeRecord(epoch.Add(500*time.Millisecond), 100, 0.01, ramp)

	t.Run("late start leaves gap", func(t *testing.T) {
		out, err := AlignUnpadded(rec, epoch, epoch.Add(1490*time.Millisecond))
		require.NoError(t, err)
		require.Len(t, out, 100)
		assert.InDelta(t, 0.5, out[0].X, 1e-9)
		assert.Equal(t, rec.Points[0].Y, out[0].Y)
	})

	t.Run("crops both ends", func(t *testing.T) {
		earliest := rec.Start.Add(100 * time.Millisecond)
		latest := rec.Start.Add(300 * time.Millisecond)
		out, err := AlignUnpadded(rec, earliest, latest)
		require.NoError(t, err)
		require.Len(t, out, 21)
		assert.Equal(t, rec.Points[10].Y, out[0].Y)
		assert.Equal(t, rec.Points[30].Y, out[20].Y)
		assert.InDelta(t, 0.0, out[0].X, 1e-9)
	})

	t.Run("never invents values", func(t *testing.T) {
		out, err := AlignUnpadded(rec, epoch, epoch.Add(5*time.Second))
		require.NoError(t, err)
		seen := make(map[float64]bool, rec.Len())
		for _, p := range rec.Points {
			seen[p.Y] = true
		}
		for _, p := range out {
			assert.True(t, seen[p.Y], "synthetic value %v", p.Y)
		}
	})
}

func TestAlign_InvalidInput(t *testing.T) {
	rec := makeRecord(epoch, 10, 0.01, ramp)

	tests := []struct {
		name     string
		rec      *models.Record
		earliest time.Time
		latest   time.Time
		wantErr  error
	}{
		{name: "window reversed", rec: rec, earliest: epoch.Add(time.Second), latest: epoch, wantErr: ErrInvalidWindow},
		{name: "empty record", rec: makeRecord(epoch, 0, 0.01, ramp), earliest: epoch, latest: epoch.Add(time.Second), wantErr: ErrInvalidWindow},
		{name: "nil record", rec: nil, earliest: epoch, latest: epoch.Add(time.Second), wantErr: ErrInvalidWindow},
		{name: "zero delta", rec: makeRecord(epoch, 10, 0, ramp), earliest: epoch, latest: epoch.Add(time.Second), wantErr: ErrInvalidDeltaT},
		{
			name:     "two centuries at 200 Hz",
			rec:      makeRecord(epoch, 10, 0.005, ramp),
			earliest: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
			latest:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
			wantErr:  ErrWindowTooLarge,
		},
		{name: "one sample past the limit", rec: makeRecord(epoch, 10, 0.5, ramp), earliest: epoch, latest: epoch.Add(seconds(MaxAlignedSamples * 0.5)), wantErr: ErrWindowTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := AlignPadded(tt.rec, tt.earliest, tt.latest)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, out)

			out, err = AlignUnpadded(tt.rec, tt.earliest, tt.latest)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, out)
		})
	}
}

func TestAlignPadded_LargestWindow(t *testing.T) {
	rec := makeRecord(epoch, 10, 0.5, ramp)

	out, err := AlignPadded(rec, epoch, epoch.Add(seconds((MaxAlignedSamples-1)*0.5)))
	require.NoError(t, err)
	assert.Len(t, out, MaxAlignedSamples)
	assert.Equal(t, rec.Points[9].Y, out[len(out)-1].Y)
}

func TestAlignToWindow(t *testing.T) {
	rec := makeRecord(epoch.Add(seconds(0.5)), 100, 0.01, ramp)
	w := models.Window{Start: epoch, Stop: epoch.Add(seconds(1.49)), DeltaT: 0.01}

	padded, err := AlignToWindow(rec, w, true)
	require.NoError(t, err)
	assert.Len(t, padded, 150)

	unpadded, err := AlignToWindow(rec, w, false)
	require.NoError(t, err)
	assert.Len(t, unpadded, 100)
}
