package cache

import (
	"context"
	"sync"

	"github.com/bilgisen/paperharvest/internal/harvest"
)

// MemoryRecorder keeps reports in memory. It stands in when Redis is not
// configured.
type MemoryRecorder struct {
	mu   sync.Mutex
	days map[string]harvest.DayReport
	last *harvest.Report
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		days: make(map[string]harvest.DayReport),
	}
}

func (m *MemoryRecorder) Close() error {
	return nil
}

func (m *MemoryRecorder) RecordDay(ctx context.Context, day harvest.DayReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[day.Date] = day
	return nil
}

func (m *MemoryRecorder) RecordRun(ctx context.Context, run harvest.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = &run
	return nil
}

// Day returns the report recorded for date, if any.
func (m *MemoryRecorder) Day(date string) (harvest.DayReport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[date]
	return d, ok
}

// LastRun returns the most recent run report, if any.
func (m *MemoryRecorder) LastRun() (harvest.Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return harvest.Report{}, false
	}
	return *m.last, true
}
