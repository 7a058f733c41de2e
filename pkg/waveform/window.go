package waveform

import (
	"context"
	"errors"
	"io/fs"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/seisview/pkg/models"
)

// ErrNoRecords is returned when no valid record contributes to a window
var ErrNoRecords = errors.New("no valid records")

// FileLoader loads and parses an instrument file. Missing files must be
// reported with an error matching fs.ErrNotExist.
type FileLoader interface {
	Load(ctx context.Context, path string) (*models.File, error)
}

// ResolveWindow scans the records of every file in paths and returns the
// earliest start, latest stop and smallest sample interval among them.
// Missing and unreadable files are skipped. If nothing usable is found the
// window is nil and the error is ErrNoRecords.
func ResolveWindow(ctx context.Context, paths []string, loader FileLoader) (*models.Window, error) {
	var records []*models.Record
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, err := loader.Load(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug().Str("path", path).Msg("Skipping missing file")
			} else {
				log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable file")
			}
			continue
		}
		records = append(records, file.Records...)
	}

	return WindowOf(records)
}

// WindowOf computes the common window over in-memory records. Empty records
// and records with a non-positive sample interval are ignored.
func WindowOf(records []*models.Record) (*models.Window, error) {
	var w *models.Window
	for _, rec := range records {
		if rec == nil || rec.Len() == 0 || rec.DeltaT <= 0 {
			continue
		}
		start, stop := rec.Start, rec.End()
		if w == nil {
			w = &models.Window{Start: start, Stop: stop, DeltaT: rec.DeltaT}
			continue
		}
		if start.Before(w.Start) {
			w.Start = start
		}
		if stop.After(w.Stop) {
			w.Stop = stop
		}
		if rec.DeltaT < w.DeltaT {
			w.DeltaT = rec.DeltaT
		}
	}

	if w == nil {
		return nil, ErrNoRecords
	}
	return w, nil
}
