package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedStats struct {
	stats sql.DBStats
}

func (f fixedStats) Stats() sql.DBStats {
	return f.stats
}

func TestConnectionPoolMonitor(t *testing.T) {
	core, entries := newRecordingLogger()
	source := fixedStats{stats: sql.DBStats{MaxOpenConnections: 10, InUse: 9, Idle: 1, OpenConnections: 10}}

	monitor := NewConnectionPoolMonitor(source, core)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	monitor.Start(ctx, time.Hour)
	monitor.Stop()
	monitor.Stop()

	metrics := monitor.GetMetrics()
	assert.Equal(t, 9, metrics.InUse)
	assert.Equal(t, 10, metrics.MaxOpenConnections)

	assert.Len(t, *entries, 1)
	assert.Equal(t, "warn", (*entries)[0].level)
}

func TestConnectionPoolMonitor_QuietPool(t *testing.T) {
	core, entries := newRecordingLogger()
	monitor := NewConnectionPoolMonitor(fixedStats{stats: sql.DBStats{MaxOpenConnections: 10, InUse: 2}}, core)

	assert.Equal(t, ConnectionPoolMetrics{}, monitor.GetMetrics())
	monitor.collectMetrics()

	assert.Equal(t, 2, monitor.GetMetrics().InUse)
	assert.Empty(t, *entries)
}
