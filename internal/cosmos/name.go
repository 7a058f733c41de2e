package cosmos

import (
	"path"
	"regexp"
	"strings"

	"github.com/RMahshie/seisview/pkg/models"
)

var (
	extPattern  = regexp.MustCompile(`(?i)\.v([012])([acvd])?$`)
	namePattern = regexp.MustCompile(`^([A-Za-z0-9]{1,2})\.([A-Za-z0-9]{1,5})\.([A-Za-z0-9]{3})(?:\.([A-Za-z0-9-]{2}))?$`)
)

// NameInfo holds the identifiers encoded in a NET.STA.CHA[.LOC].Vn file name
type NameInfo struct {
	Network  string
	Station  string
	Channel  string
	Location string
}

// ClassifyName infers the file type from the extension: V0 raw counts, V1
// uncorrected acceleration, V2 (or V2a/V2c) corrected acceleration, V2v
// velocity and V2d displacement.
func ClassifyName(name string) models.FileType {
	m := extPattern.FindStringSubmatch(path.Base(name))
	if m == nil {
		return models.FileTypeUnknown
	}

	switch m[1] {
	case "0":
		return models.FileTypeRaw
	case "1":
		return models.FileTypeUncorrectedAccel
	}

	switch strings.ToLower(m[2]) {
	case "v":
		return models.FileTypeVelocity
	case "d":
		return models.FileTypeDisplacement
	default:
		return models.FileTypeCorrectedAccel
	}
}

// ParseName extracts network, station, channel and location from a file
// name. The second return value is false when the name doesn't follow the
// convention.
func ParseName(name string) (NameInfo, bool) {
	base := path.Base(name)
	loc := extPattern.FindStringIndex(base)
	if loc == nil {
		return NameInfo{}, false
	}

	m := namePattern.FindStringSubmatch(base[:loc[0]])
	if m == nil {
		return NameInfo{}, false
	}

	return NameInfo{
		Network:  strings.ToUpper(m[1]),
		Station:  strings.ToUpper(m[2]),
		Channel:  strings.ToUpper(m[3]),
		Location: m[4],
	}, true
}
