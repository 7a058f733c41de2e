package processing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RMahshie/seisview/pkg/models"
)

func TestResultSet_ConcurrentReaders(t *testing.T) {
	rs := NewResultSet()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			rs.Add(&models.ChartGroup{Station: "S"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = rs.Snapshot()
		}
	}()
	wg.Wait()

	assert.Equal(t, 100, rs.Len())

	snap := rs.Snapshot()
	rs.Add(&models.ChartGroup{Station: "T"})
	assert.Len(t, snap, 100, "snapshot is detached from later adds")
}
