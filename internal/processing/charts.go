package processing

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/seisview/internal/cosmos"
	"github.com/RMahshie/seisview/pkg/models"
	"github.com/RMahshie/seisview/pkg/waveform"
)

// ProgressFunc observes batch progress, one unit per station
type ProgressFunc func(done, total int)

// Options control how chart groups are built
type Options struct {
	Padded  bool
	Spectra bool
}

// palette cycles through series colors within a group
var palette = []string{"#1f77b4", "#d62728", "#2ca02c", "#ff7f0e", "#9467bd", "#8c564b", "#e377c2", "#17becf"}

// ChartGenerator builds per-station chart groups from waveform files
type ChartGenerator struct {
	loader waveform.FileLoader
}

// NewChartGenerator creates a generator loading files through loader
func NewChartGenerator(loader waveform.FileLoader) *ChartGenerator {
	return &ChartGenerator{loader: loader}
}

// stationGroup is the set of files recorded at one station
type stationGroup struct {
	key   string
	paths []string
}

// groupByStation groups paths by the NET.STA encoded in their names. Files
// that don't follow the naming convention are charted on their own.
func groupByStation(paths []string) []stationGroup {
	index := make(map[string]int)
	var groups []stationGroup
	for _, p := range paths {
		key := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if info, ok := cosmos.ParseName(p); ok {
			key = info.Network + "." + info.Station
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, stationGroup{key: key})
		}
		groups[i].paths = append(groups[i].paths, p)
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].key < groups[b].key })
	return groups
}

// Generate builds one chart group per station and adds it to results.
// Stations without usable records are skipped. It stops early when ctx is
// cancelled; groups built so far stay in results.
func (g *ChartGenerator) Generate(ctx context.Context, batchID string, paths []string, opts Options, results *ResultSet, progress ProgressFunc) error {
	stations := groupByStation(paths)
	total := len(stations)

	for i, st := range stations {
		if err := ctx.Err(); err != nil {
			return err
		}

		group, err := g.chartStation(ctx, st, opts)
		switch {
		case errors.Is(err, waveform.ErrNoRecords):
			log.Warn().Str("batchID", batchID).Str("station", st.key).Msg("No usable records for station")
		case err != nil:
			return fmt.Errorf("station %s: %w", st.key, err)
		default:
			group.BatchID = batchID
			results.Add(group)
			log.Info().Str("batchID", batchID).Str("station", group.Station).Int("series", len(group.Series)).Msg("Chart group built")
		}

		if progress != nil {
			progress(i+1, total)
		}
	}

	return nil
}

func (g *ChartGenerator) chartStation(ctx context.Context, st stationGroup, opts Options) (*models.ChartGroup, error) {
	cache := newCachingLoader(g.loader)

	w, err := waveform.ResolveWindow(ctx, st.paths, cache)
	if err != nil {
		return nil, err
	}

	group := &models.ChartGroup{
		ID:        uuid.New().String(),
		Station:   st.key,
		Window:    *w,
		CreatedAt: time.Now(),
	}

	for _, p := range st.paths {
		file, ok := cache.loaded(p)
		if !ok {
			continue
		}
		if file.Station != "" {
			group.Station = strings.Trim(file.Network+"."+file.Station, ".")
		}

		for _, rec := range file.Records {
			points, err := waveform.AlignToWindow(rec, *w, opts.Padded)
			if err != nil {
				log.Warn().Err(err).Str("path", p).Str("channel", rec.Channel).Msg("Skipping record that cannot be aligned")
				continue
			}

			series := models.Series{
				Title:      seriesTitle(rec),
				Color:      palette[len(group.Series)%len(palette)],
				SourceFile: p,
				Channel:    rec.Channel,
				Quantity:   rec.Quantity,
				Points:     points,
			}

			if opts.Spectra {
				spec, err := waveform.Spectrum(rec.Points, rec.DeltaT)
				if err != nil {
					// Absent spectrum means derivation failed, not a flat one
					log.Warn().Err(err).Str("path", p).Str("channel", rec.Channel).Msg("Spectral derivation failed")
				} else {
					series.Spectrum = waveform.TrimToNyquist(spec)
				}
			}

			group.Series = append(group.Series, series)
		}
	}

	if len(group.Series) == 0 {
		return nil, waveform.ErrNoRecords
	}
	return group, nil
}

func seriesTitle(rec *models.Record) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{rec.Network, rec.Station, rec.Channel} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	title := strings.Join(parts, ".")
	if rec.Quantity != models.QuantityUnknown && rec.Quantity != "" {
		title += " " + string(rec.Quantity)
	}
	return title
}

// cachingLoader remembers parsed files so a station's files are read once
type cachingLoader struct {
	next  waveform.FileLoader
	mu    sync.Mutex
	files map[string]*models.File
}

func newCachingLoader(next waveform.FileLoader) *cachingLoader {
	return &cachingLoader{next: next, files: make(map[string]*models.File)}
}

func (c *cachingLoader) Load(ctx context.Context, p string) (*models.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.files[p]; ok {
		return f, nil
	}
	f, err := c.next.Load(ctx, p)
	if err != nil {
		return nil, err
	}
	c.files[p] = f
	return f, nil
}

func (c *cachingLoader) loaded(p string) (*models.File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[p]
	return f, ok
}
