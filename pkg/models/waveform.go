package models

import (
	"time"
)

// Point represents a single sample. X is elapsed seconds for time series and
// Hz for spectra.
type Point struct {
	X float64 `json:"x" doc:"Elapsed seconds or frequency in Hz"`
	Y float64 `json:"y" doc:"Instrument reading or spectral magnitude"`
}

// Quantity is the physical quantity a record measures
type Quantity string

const (
	QuantityUnknown      Quantity = "unknown"
	QuantityAcceleration Quantity = "acceleration"
	QuantityVelocity     Quantity = "velocity"
	QuantityDisplacement Quantity = "displacement"
)

// FileType classifies an instrument file by its processing stage
type FileType string

const (
	FileTypeUnknown          FileType = "unknown"
	FileTypeRaw              FileType = "raw"
	FileTypeUncorrectedAccel FileType = "uncorrected_acceleration"
	FileTypeCorrectedAccel   FileType = "corrected_acceleration"
	FileTypeVelocity         FileType = "velocity"
	FileTypeDisplacement     FileType = "displacement"
)

// Record is one channel's waveform. Records are read-only once parsed.
type Record struct {
	Channel  string    `json:"channel"`
	Station  string    `json:"station"`
	Network  string    `json:"network"`
	Quantity Quantity  `json:"quantity"`
	Units    int       `json:"units"`
	Start    time.Time `json:"start"`
	DeltaT   float64   `json:"delta_t"` // seconds
	Points   []Point   `json:"points"`

	// Spectrum is filled in when the record's magnitude spectrum has been derived.
	Spectrum []Point `json:"spectrum,omitempty"`
}

// Len returns the number of samples
func (r *Record) Len() int {
	return len(r.Points)
}

// End returns the timestamp of the last sample. For an empty record it lies
// before Start.
func (r *Record) End() time.Time {
	span := float64(len(r.Points)-1) * r.DeltaT
	return r.Start.Add(time.Duration(span * float64(time.Second)))
}

// Values returns the Y values of the record's points
func (r *Record) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Y
	}
	return out
}

// File is a parsed instrument file holding one or more records
type File struct {
	Path    string    `json:"path"`
	Type    FileType  `json:"type"`
	Network string    `json:"network"`
	Station string    `json:"station"`
	Records []*Record `json:"records"`
}

// Window is the common time base several records are compared on
type Window struct {
	Start  time.Time `json:"start" doc:"Earliest record start"`
	Stop   time.Time `json:"stop" doc:"Latest record stop"`
	DeltaT float64   `json:"delta_t" doc:"Smallest sample interval in seconds"`
}

// Duration returns the window length in seconds
func (w Window) Duration() float64 {
	return w.Stop.Sub(w.Start).Seconds()
}

// Series is a display-oriented projection of a record
type Series struct {
	Title      string   `json:"title"`
	Color      string   `json:"color"`
	SourceFile string   `json:"source_file"`
	Channel    string   `json:"channel"`
	Quantity   Quantity `json:"quantity"`
	Points     []Point  `json:"points"`
	Spectrum   []Point  `json:"spectrum,omitempty"`
}

// ChartGroup holds every series computed for one station in a batch
type ChartGroup struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	Station   string    `json:"station"`
	Window    Window    `json:"window"`
	Series    []Series  `json:"series"`
	CreatedAt time.Time `json:"created_at"`
}
