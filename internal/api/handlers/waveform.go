package handlers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/seisview/internal/cosmos"
	"github.com/RMahshie/seisview/internal/storage"
	"github.com/RMahshie/seisview/pkg/models"
	"github.com/RMahshie/seisview/pkg/waveform"
)

const uploadExpiry = 15 * time.Minute

// WaveformHandler handles file, alignment and spectrum requests
type WaveformHandler struct {
	store  storage.Store
	loader waveform.FileLoader
}

// NewWaveformHandler creates a new waveform handler
func NewWaveformHandler(store storage.Store, loader waveform.FileLoader) *WaveformHandler {
	return &WaveformHandler{
		store:  store,
		loader: loader,
	}
}

// CreateUploadURL returns a pre-signed URL for uploading a COSMOS file
func (h *WaveformHandler) CreateUploadURL(ctx context.Context, req *models.CreateUploadURLRequest) (*models.CreateUploadURLResponse, error) {
	name := path.Base(req.Body.FileName)
	fileType := cosmos.ClassifyName(name)
	if fileType == models.FileTypeUnknown {
		return nil, huma.Error400BadRequest("Unsupported file name. Expected a .V0, .V1 or .V2 COSMOS file.", nil)
	}

	key := fmt.Sprintf("waveforms/%s/%s", uuid.New(), name)
	log.Info().Str("key", key).Str("fileType", string(fileType)).Msg("Generating upload URL")

	uploadURL, err := h.store.GenerateUploadURL(ctx, key, req.Body.ContentType)
	if err != nil {
		if strings.Contains(err.Error(), "invalid content type") {
			return nil, huma.Error400BadRequest("File format not supported.", err)
		}
		return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
	}

	return &models.CreateUploadURLResponse{
		Body: models.CreateUploadURLResponseBody{
			Key:       key,
			FileType:  fileType,
			UploadURL: uploadURL,
			ExpiresIn: int(uploadExpiry.Seconds()),
		},
	}, nil
}

// InspectFile parses a stored file and describes its records
func (h *WaveformHandler) InspectFile(ctx context.Context, req *models.InspectFileRequest) (*models.InspectFileResponse, error) {
	file, err := h.load(ctx, req.Body.Path)
	if err != nil {
		return nil, err
	}

	body := models.InspectFileResponseBody{
		Path:    file.Path,
		Type:    file.Type,
		Station: file.Station,
		Network: file.Network,
	}
	for _, rec := range file.Records {
		body.Records = append(body.Records, models.RecordSummary{
			Channel:  rec.Channel,
			Station:  rec.Station,
			Network:  rec.Network,
			Quantity: rec.Quantity,
			Units:    rec.Units,
			Start:    rec.Start,
			End:      rec.End(),
			DeltaT:   rec.DeltaT,
			Samples:  rec.Len(),
		})
	}

	return &models.InspectFileResponse{Body: body}, nil
}

// ResolveWindow returns the common window of several files
func (h *WaveformHandler) ResolveWindow(ctx context.Context, req *models.ResolveWindowRequest) (*models.ResolveWindowResponse, error) {
	w, err := waveform.ResolveWindow(ctx, req.Body.Paths, h.loader)
	if errors.Is(err, waveform.ErrNoRecords) {
		return nil, huma.Error404NotFound("No valid records found in the given files", err)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to resolve window", err)
	}

	log.Info().Int("files", len(req.Body.Paths)).Time("start", w.Start).Time("stop", w.Stop).Float64("deltaT", w.DeltaT).Msg("Resolved window")
	return &models.ResolveWindowResponse{Body: *w}, nil
}

// AlignRecords aligns a file's records to the requested window
func (h *WaveformHandler) AlignRecords(ctx context.Context, req *models.AlignRequest) (*models.SeriesResponse, error) {
	file, err := h.load(ctx, req.Body.Path)
	if err != nil {
		return nil, err
	}

	records := selectRecords(file, req.Body.Channel)
	if len(records) == 0 {
		return nil, huma.Error404NotFound(fmt.Sprintf("Channel %s not found", req.Body.Channel), nil)
	}

	resp := &models.SeriesResponse{}
	for _, rec := range records {
		var points []models.Point
		if req.Body.Padded {
			points, err = waveform.AlignPadded(rec, req.Body.Start, req.Body.Stop)
		} else {
			points, err = waveform.AlignUnpadded(rec, req.Body.Start, req.Body.Stop)
		}
		if errors.Is(err, waveform.ErrInvalidWindow) || errors.Is(err, waveform.ErrInvalidDeltaT) {
			return nil, huma.Error400BadRequest("Invalid time window", err)
		}
		if errors.Is(err, waveform.ErrWindowTooLarge) {
			return nil, huma.Error400BadRequest(fmt.Sprintf("Time window needs more than %d samples", waveform.MaxAlignedSamples), err)
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to align record", err)
		}
		resp.Body.Series = append(resp.Body.Series, toSeries(file, rec, points))
	}

	return resp, nil
}

// ComputeSpectrum derives magnitude spectra for a file's records. A record
// whose transform fails is returned without a spectrum.
func (h *WaveformHandler) ComputeSpectrum(ctx context.Context, req *models.SpectrumRequest) (*models.SeriesResponse, error) {
	file, err := h.load(ctx, req.Body.Path)
	if err != nil {
		return nil, err
	}

	records := selectRecords(file, req.Body.Channel)
	if len(records) == 0 {
		return nil, huma.Error404NotFound(fmt.Sprintf("Channel %s not found", req.Body.Channel), nil)
	}

	resp := &models.SeriesResponse{}
	var lastErr error
	derived := 0
	for _, rec := range records {
		series := toSeries(file, rec, nil)

		spec, err := waveform.Spectrum(rec.Points, rec.DeltaT)
		if err != nil {
			log.Warn().Err(err).Str("path", file.Path).Str("channel", rec.Channel).Msg("Spectral derivation failed")
			lastErr = err
		} else {
			if !req.Body.Full {
				spec = waveform.TrimToNyquist(spec)
			}
			series.Spectrum = spec
			derived++
		}
		resp.Body.Series = append(resp.Body.Series, series)
	}

	if derived == 0 {
		return nil, huma.Error422UnprocessableEntity("Spectral derivation failed", lastErr)
	}
	return resp, nil
}

// load maps loader failures to API errors
func (h *WaveformHandler) load(ctx context.Context, key string) (*models.File, error) {
	file, err := h.loader.Load(ctx, key)
	if err == nil {
		return file, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, huma.Error404NotFound("File not found", err)
	}
	if errors.Is(err, cosmos.ErrFormat) || errors.Is(err, cosmos.ErrNoData) {
		return nil, huma.Error422UnprocessableEntity("File is not a valid COSMOS file", err)
	}
	return nil, huma.Error500InternalServerError("Failed to load file", err)
}

func selectRecords(file *models.File, channel string) []*models.Record {
	if channel == "" {
		return file.Records
	}
	var out []*models.Record
	for _, rec := range file.Records {
		if strings.EqualFold(rec.Channel, channel) {
			out = append(out, rec)
		}
	}
	return out
}

func toSeries(file *models.File, rec *models.Record, points []models.Point) models.Series {
	return models.Series{
		Title:      strings.Trim(rec.Network+"."+rec.Station+"."+rec.Channel, "."),
		SourceFile: file.Path,
		Channel:    rec.Channel,
		Quantity:   rec.Quantity,
		Points:     points,
	}
}
