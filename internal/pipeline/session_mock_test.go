package pipeline

import (
	"context"
	"sync"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// sessionMock is a configurable Session with call recording.
type sessionMock struct {
	PrepareFunc   func(ctx context.Context) error
	TranslateFunc func(ctx context.Context, text string) (string, error)

	mu             sync.RWMutex
	prepareCalls   int
	translateCalls []string
}

func (m *sessionMock) Prepare(ctx context.Context) error {
	m.mu.Lock()
	m.prepareCalls++
	m.mu.Unlock()
	if m.PrepareFunc == nil {
		return nil
	}
	return m.PrepareFunc(ctx)
}

func (m *sessionMock) Translate(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.translateCalls = append(m.translateCalls, text)
	m.mu.Unlock()
	if m.TranslateFunc == nil {
		return "[" + text + "]", nil
	}
	return m.TranslateFunc(ctx, text)
}

func (m *sessionMock) PrepareCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prepareCalls
}

func (m *sessionMock) TranslateCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.translateCalls))
	copy(out, m.translateCalls)
	return out
}

// oracleMock answers availability from a mutable table; missing pairs are
// installed.
type oracleMock struct {
	mu    sync.Mutex
	table map[domain.LanguagePair]domain.Availability
	err   error
	busy  int // calls answered with domain.ErrBackendBusy before err/table
	calls int
}

func (m *oracleMock) Set(pair domain.LanguagePair, a domain.Availability) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.table == nil {
		m.table = make(map[domain.LanguagePair]domain.Availability)
	}
	m.table[pair] = a
}

func (m *oracleMock) Availability(_ context.Context, pair domain.LanguagePair) (domain.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.busy {
		return "", domain.ErrBackendBusy
	}
	if m.err != nil {
		return "", m.err
	}
	if a, ok := m.table[pair]; ok {
		return a, nil
	}
	return domain.AvailabilityInstalled, nil
}

func (m *oracleMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
