// Package cosmos reads strong-motion files in the COSMOS V0/V1/V2 text format.
//
// A file holds one or more channel sections. Each section is a text header
// whose first line announces its length ("... with 13 text lines ..."),
// an integer header, a real header, comment lines, and a data block written
// with a Fortran fixed-width format such as (10I8) or (8F10.5), followed by an
// "End-of-data" line.
//
// Header values used (1-based COSMOS parameter numbers):
//
//	int  1      processing stage (0 raw, 1 uncorrected, 2 corrected)
//	int  2      data type (1 acceleration, 2 velocity, 3 displacement)
//	int  3      units code
//	int 40..45  start year, julian day, month, day, hour, minute
//	real 30     start second
//	real 62     sample interval in milliseconds
//
// -999 marks an unset value in both headers.
package cosmos

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/RMahshie/seisview/pkg/models"
)

const nullValue = -999

// MaxValues bounds the value count a header or data block may announce.
// Larger counts are rejected with ErrFormat.
const MaxValues = 1 << 24

// preallocation limit for value slices, they grow past it as lines are read
const valuesHint = 1 << 16

// Header parameter positions (0-based)
const (
	intStage     = 0
	intDataType  = 1
	intUnits     = 2
	intYear      = 39
	intJulianDay = 40
	intMonth     = 41
	intDay       = 42
	intHour      = 43
	intMinute    = 44

	realSecond   = 29
	realDeltaTMs = 61
)

var (
	// ErrFormat is returned for files that don't follow the COSMOS layout
	ErrFormat = errors.New("malformed COSMOS file")
	// ErrNoData is returned for files without any channel section
	ErrNoData = errors.New("no channel data")
)

var (
	textLinesPattern  = regexp.MustCompile(`(?i)with\s+(\d+)\s+text\s+lines`)
	intHeaderPattern  = regexp.MustCompile(`(?i)^\s*(\d+)\s+integer-header values follow on\s+(\d+)\s+lines?`)
	realHeaderPattern = regexp.MustCompile(`(?i)^\s*(\d+)\s+real-header values follow on\s+(\d+)\s+lines?`)
	commentPattern    = regexp.MustCompile(`(?i)^\s*(\d+)\s+comment line`)
	dataPattern       = regexp.MustCompile(`^\s*(\d+)\s+`)
	formatPattern     = regexp.MustCompile(`(?i)format\s*=\s*\(\s*(\d+)\s*([IFE])\s*(\d+)(?:\.(\d+))?\s*\)`)

	channelPattern = regexp.MustCompile(`(?i)\bchan(?:nel)?\s*(?:code)?\s*[:=]\s*([A-Z][A-Z0-9]{2})\b`)
	stationPattern = regexp.MustCompile(`(?i)\bsta(?:tion)?\s*(?:code)?\s*[:=]\s*([A-Z0-9]{2,5})\b`)
	networkPattern = regexp.MustCompile(`(?i)\bnet(?:work)?\s*(?:code)?\s*[:=]\s*([A-Z0-9]{1,2})\b`)
)

// fieldFormat is a Fortran edit descriptor such as 10I8 or 5F15.6
type fieldFormat struct {
	perLine int
	width   int
}

// Section is one channel section with its raw headers
type Section struct {
	Text     []string
	Ints     []int
	Reals    []float64
	Comments []string
	Values   []float64
}

type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func (lr *lineReader) next() (string, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	lr.line++
	return strings.TrimRight(lr.sc.Text(), "\r"), nil
}

// mustNext is next with EOF turned into a format error
func (lr *lineReader) mustNext(what string) (string, error) {
	line, err := lr.next()
	if errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: unexpected end of file reading %s", ErrFormat, what)
	}
	return line, err
}

func (lr *lineReader) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrFormat, lr.line, fmt.Sprintf(format, args...))
}

// Parse reads a COSMOS file. name is used for file-type classification and
// as a fallback source of station identifiers.
func Parse(r io.Reader, name string) (*models.File, error) {
	sections, err := ReadSections(r)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		Path: name,
		Type: ClassifyName(name),
	}
	info, named := ParseName(name)

	for i, sec := range sections {
		rec, err := sec.record()
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i+1, err)
		}

		header := strings.Join(sec.Text, "\n")
		if named {
			rec.Network, rec.Station = info.Network, info.Station
		} else {
			rec.Network = firstMatch(networkPattern, header)
			rec.Station = firstMatch(stationPattern, header)
		}
		rec.Channel = firstMatch(channelPattern, header)
		if rec.Channel == "" && named && len(sections) == 1 {
			rec.Channel = info.Channel
		}
		if rec.Channel == "" {
			rec.Channel = fmt.Sprintf("CH%d", i+1)
		}

		if file.Type == models.FileTypeUnknown {
			file.Type = sec.fileType()
		}
		file.Records = append(file.Records, rec)
	}

	if len(file.Records) > 0 {
		file.Network = file.Records[0].Network
		file.Station = file.Records[0].Station
	}

	return file, nil
}

// ReadSections splits a COSMOS file into its channel sections
func ReadSections(r io.Reader) ([]*Section, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lr := &lineReader{sc: sc}

	var sections []*Section
	for {
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		sec, err := readSection(lr, line)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}

	if len(sections) == 0 {
		return nil, ErrNoData
	}
	return sections, nil
}

func readSection(lr *lineReader, first string) (*Section, error) {
	m := textLinesPattern.FindStringSubmatch(first)
	if m == nil {
		return nil, lr.errorf("expected text header, got %q", first)
	}
	textLines, _ := strconv.Atoi(m[1])
	if textLines < 1 {
		return nil, lr.errorf("invalid text header length %d", textLines)
	}

	sec := &Section{Text: []string{first}}
	for i := 1; i < textLines; i++ {
		line, err := lr.mustNext("text header")
		if err != nil {
			return nil, err
		}
		sec.Text = append(sec.Text, line)
	}

	// Integer header
	line, err := lr.mustNext("integer header")
	if err != nil {
		return nil, err
	}
	count, format, err := headerSpec(lr, line, intHeaderPattern, "integer header")
	if err != nil {
		return nil, err
	}
	raw, err := readFixed(lr, count, format)
	if err != nil {
		return nil, err
	}
	for _, v := range raw {
		sec.Ints = append(sec.Ints, int(v))
	}

	// Real header
	line, err = lr.mustNext("real header")
	if err != nil {
		return nil, err
	}
	count, format, err = headerSpec(lr, line, realHeaderPattern, "real header")
	if err != nil {
		return nil, err
	}
	if sec.Reals, err = readFixed(lr, count, format); err != nil {
		return nil, err
	}

	// Comments
	line, err = lr.mustNext("comment count")
	if err != nil {
		return nil, err
	}
	m = commentPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, lr.errorf("expected comment count, got %q", line)
	}
	comments, _ := strconv.Atoi(m[1])
	for i := 0; i < comments; i++ {
		line, err := lr.mustNext("comments")
		if err != nil {
			return nil, err
		}
		sec.Comments = append(sec.Comments, strings.TrimPrefix(line, "|"))
	}

	// Data block
	line, err = lr.mustNext("data header")
	if err != nil {
		return nil, err
	}
	m = dataPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, lr.errorf("expected data header, got %q", line)
	}
	count, _ = strconv.Atoi(m[1])
	format, err = parseFormat(lr, line)
	if err != nil {
		return nil, err
	}
	if sec.Values, err = readFixed(lr, count, format); err != nil {
		return nil, err
	}

	line, err = lr.next()
	if errors.Is(err, io.EOF) {
		return sec, nil
	}
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "end-of-data") {
		return nil, lr.errorf("expected end-of-data, got %q", line)
	}

	return sec, nil
}

func headerSpec(lr *lineReader, line string, pattern *regexp.Regexp, what string) (int, fieldFormat, error) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return 0, fieldFormat{}, lr.errorf("expected %s, got %q", what, line)
	}
	count, _ := strconv.Atoi(m[1])
	format, err := parseFormat(lr, line)
	return count, format, err
}

func parseFormat(lr *lineReader, line string) (fieldFormat, error) {
	m := formatPattern.FindStringSubmatch(line)
	if m == nil {
		return fieldFormat{}, lr.errorf("missing format descriptor in %q", line)
	}
	perLine, _ := strconv.Atoi(m[1])
	width, _ := strconv.Atoi(m[3])
	if perLine < 1 || width < 1 {
		return fieldFormat{}, lr.errorf("invalid format descriptor %q", m[0])
	}
	return fieldFormat{perLine: perLine, width: width}, nil
}

// readFixed reads count values laid out perLine to a line in fields of the
// given width. Lines whose fixed columns don't parse are split on whitespace.
func readFixed(lr *lineReader, count int, format fieldFormat) ([]float64, error) {
	if count < 0 || count > MaxValues {
		return nil, lr.errorf("value count %d exceeds limit of %d", count, MaxValues)
	}
	values := make([]float64, 0, min(count, valuesHint))
	for len(values) < count {
		line, err := lr.mustNext("values")
		if err != nil {
			return nil, err
		}

		parsed, ok := splitFixed(line, format)
		if !ok {
			parsed, ok = splitFields(line)
			if !ok {
				return nil, lr.errorf("unparsable values %q", line)
			}
		}
		if len(parsed) == 0 {
			return nil, lr.errorf("expected %d values, got %d", count, len(values))
		}
		values = append(values, parsed...)
	}

	if len(values) > count {
		return nil, lr.errorf("expected %d values, got %d", count, len(values))
	}
	return values, nil
}

func splitFixed(line string, format fieldFormat) ([]float64, bool) {
	var out []float64
	for i := 0; i < format.perLine; i++ {
		start := i * format.width
		if start >= len(line) {
			break
		}
		end := min(start+format.width, len(line))
		field := strings.TrimSpace(line[start:end])
		if field == "" {
			break
		}
		v, err := parseNumber(field)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func splitFields(line string) ([]float64, bool) {
	fields := strings.Fields(line)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := parseNumber(f)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func parseNumber(s string) (float64, error) {
	// Fortran writers sometimes emit D exponents
	s = strings.NewReplacer("D", "E", "d", "e").Replace(s)
	return strconv.ParseFloat(s, 64)
}

func (s *Section) intAt(i int) (int, bool) {
	if i >= len(s.Ints) || s.Ints[i] == nullValue {
		return 0, false
	}
	return s.Ints[i], true
}

func (s *Section) realAt(i int) (float64, bool) {
	if i >= len(s.Reals) || math.Abs(s.Reals[i]-nullValue) < 1e-6 {
		return 0, false
	}
	return s.Reals[i], true
}

// StartTime returns the timestamp of the first sample
func (s *Section) StartTime() (time.Time, error) {
	year, ok := s.intAt(intYear)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: start year not set", ErrFormat)
	}
	hour, _ := s.intAt(intHour)
	minute, _ := s.intAt(intMinute)
	sec, _ := s.realAt(realSecond)

	var day time.Time
	if jday, ok := s.intAt(intJulianDay); ok && jday > 0 {
		day = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, jday-1)
	} else {
		month, mok := s.intAt(intMonth)
		dom, dok := s.intAt(intDay)
		if !mok || !dok {
			return time.Time{}, fmt.Errorf("%w: start date not set", ErrFormat)
		}
		day = time.Date(year, time.Month(month), dom, 0, 0, 0, 0, time.UTC)
	}

	offset := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute +
		time.Duration(math.Round(sec*1e9))
	return day.Add(offset), nil
}

// DeltaT returns the sample interval in seconds
func (s *Section) DeltaT() (float64, error) {
	ms, ok := s.realAt(realDeltaTMs)
	if !ok || ms <= 0 {
		return 0, fmt.Errorf("%w: sample interval not set", ErrFormat)
	}
	return ms / 1000, nil
}

// Quantity returns the physical quantity of the data block
func (s *Section) Quantity() models.Quantity {
	v, _ := s.intAt(intDataType)
	switch v {
	case 1:
		return models.QuantityAcceleration
	case 2:
		return models.QuantityVelocity
	case 3:
		return models.QuantityDisplacement
	default:
		return models.QuantityUnknown
	}
}

func (s *Section) fileType() models.FileType {
	if stage, ok := s.intAt(intStage); ok {
		switch stage {
		case 0:
			return models.FileTypeRaw
		case 1:
			return models.FileTypeUncorrectedAccel
		}
	}
	switch s.Quantity() {
	case models.QuantityVelocity:
		return models.FileTypeVelocity
	case models.QuantityDisplacement:
		return models.FileTypeDisplacement
	default:
		return models.FileTypeCorrectedAccel
	}
}

func (s *Section) record() (*models.Record, error) {
	start, err := s.StartTime()
	if err != nil {
		return nil, err
	}
	dt, err := s.DeltaT()
	if err != nil {
		return nil, err
	}
	units, _ := s.intAt(intUnits)

	points := make([]models.Point, len(s.Values))
	for i, v := range s.Values {
		points[i] = models.Point{X: float64(i) * dt, Y: v}
	}

	return &models.Record{
		Quantity: s.Quantity(),
		Units:    units,
		Start:    start,
		DeltaT:   dt,
		Points:   points,
	}, nil
}

func firstMatch(pattern *regexp.Regexp, s string) string {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
