package cosmos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RMahshie/seisview/pkg/models"
)

func TestClassifyName(t *testing.T) {
	tests := []struct {
		name string
		want models.FileType
	}{
		{"CI.PASC.HNZ.V0", models.FileTypeRaw},
		{"CI.PASC.HNZ.v1", models.FileTypeUncorrectedAccel},
		{"CI.PASC.HNZ.V2", models.FileTypeCorrectedAccel},
		{"CI.PASC.HNZ.V2a", models.FileTypeCorrectedAccel},
		{"CI.PASC.HNZ.V2c", models.FileTypeCorrectedAccel},
		{"CI.PASC.HNZ.V2v", models.FileTypeVelocity},
		{"events/2024/CI.PASC.HNZ.V2d", models.FileTypeDisplacement},
		{"14383_1.V2", models.FileTypeCorrectedAccel},
		{"CI.PASC.HNZ.V3", models.FileTypeUnknown},
		{"readme.txt", models.FileTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyName(tt.name))
		})
	}
}

func TestParseName(t *testing.T) {
	info, ok := ParseName("events/NC.CMB.HNE.--.V1")
	assert.True(t, ok)
	assert.Equal(t, NameInfo{Network: "NC", Station: "CMB", Channel: "HNE", Location: "--"}, info)

	info, ok = ParseName("ci.pasc.hnz.V2")
	assert.True(t, ok)
	assert.Equal(t, "PASC", info.Station)
	assert.Empty(t, info.Location)

	_, ok = ParseName("14383_1.V2")
	assert.False(t, ok)

	_, ok = ParseName("CI.PASC.HNZ.txt")
	assert.False(t, ok)
}
