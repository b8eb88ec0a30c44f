package coordinator

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yaoqiang/voxwords/internal/domain"
)

var _ translator = &translatorMock{}

type translatorMock struct {
	TranslateFunc       func(ctx context.Context, id uuid.UUID, text string) (string, error)
	CancelAllFunc       func()
	SetLanguagePairFunc func(pair domain.LanguagePair) bool

	calls struct {
		Translate []struct {
			ID   uuid.UUID
			Text string
		}
		CancelAll       []struct{}
		SetLanguagePair []struct {
			Pair domain.LanguagePair
		}
	}
	lockTranslate       sync.RWMutex
	lockCancelAll       sync.RWMutex
	lockSetLanguagePair sync.RWMutex
}

func (mock *translatorMock) Translate(ctx context.Context, id uuid.UUID, text string) (string, error) {
	if mock.TranslateFunc == nil {
		panic("translatorMock.TranslateFunc: method is nil but translator.Translate was just called")
	}
	callInfo := struct {
		ID   uuid.UUID
		Text string
	}{ID: id, Text: text}
	mock.lockTranslate.Lock()
	mock.calls.Translate = append(mock.calls.Translate, callInfo)
	mock.lockTranslate.Unlock()
	return mock.TranslateFunc(ctx, id, text)
}

func (mock *translatorMock) TranslateCalls() []struct {
	ID   uuid.UUID
	Text string
} {
	mock.lockTranslate.RLock()
	calls := mock.calls.Translate
	mock.lockTranslate.RUnlock()
	return calls
}

func (mock *translatorMock) CancelAll() {
	mock.lockCancelAll.Lock()
	mock.calls.CancelAll = append(mock.calls.CancelAll, struct{}{})
	mock.lockCancelAll.Unlock()
	if mock.CancelAllFunc != nil {
		mock.CancelAllFunc()
	}
}

func (mock *translatorMock) CancelAllCalls() []struct{} {
	mock.lockCancelAll.RLock()
	calls := mock.calls.CancelAll
	mock.lockCancelAll.RUnlock()
	return calls
}

func (mock *translatorMock) SetLanguagePair(pair domain.LanguagePair) bool {
	callInfo := struct{ Pair domain.LanguagePair }{Pair: pair}
	mock.lockSetLanguagePair.Lock()
	mock.calls.SetLanguagePair = append(mock.calls.SetLanguagePair, callInfo)
	mock.lockSetLanguagePair.Unlock()
	if mock.SetLanguagePairFunc == nil {
		return true
	}
	return mock.SetLanguagePairFunc(pair)
}

func (mock *translatorMock) SetLanguagePairCalls() []struct{ Pair domain.LanguagePair } {
	mock.lockSetLanguagePair.RLock()
	calls := mock.calls.SetLanguagePair
	mock.lockSetLanguagePair.RUnlock()
	return calls
}

var _ cardStore = &cardStoreMock{}

type cardStoreMock struct {
	SaveCardFunc  func(ctx context.Context, card *domain.VocabularyCard) error
	ListCardsFunc func(ctx context.Context, limit int) ([]domain.VocabularyCard, error)

	calls struct {
		SaveCard []struct {
			Card *domain.VocabularyCard
		}
		ListCards []struct {
			Limit int
		}
	}
	lockSaveCard  sync.RWMutex
	lockListCards sync.RWMutex
}

func (mock *cardStoreMock) SaveCard(ctx context.Context, card *domain.VocabularyCard) error {
	if mock.SaveCardFunc == nil {
		panic("cardStoreMock.SaveCardFunc: method is nil but cardStore.SaveCard was just called")
	}
	callInfo := struct{ Card *domain.VocabularyCard }{Card: card}
	mock.lockSaveCard.Lock()
	mock.calls.SaveCard = append(mock.calls.SaveCard, callInfo)
	mock.lockSaveCard.Unlock()
	return mock.SaveCardFunc(ctx, card)
}

func (mock *cardStoreMock) SaveCardCalls() []struct{ Card *domain.VocabularyCard } {
	mock.lockSaveCard.RLock()
	calls := mock.calls.SaveCard
	mock.lockSaveCard.RUnlock()
	return calls
}

func (mock *cardStoreMock) ListCards(ctx context.Context, limit int) ([]domain.VocabularyCard, error) {
	if mock.ListCardsFunc == nil {
		panic("cardStoreMock.ListCardsFunc: method is nil but cardStore.ListCards was just called")
	}
	callInfo := struct{ Limit int }{Limit: limit}
	mock.lockListCards.Lock()
	mock.calls.ListCards = append(mock.calls.ListCards, callInfo)
	mock.lockListCards.Unlock()
	return mock.ListCardsFunc(ctx, limit)
}

func (mock *cardStoreMock) ListCardsCalls() []struct{ Limit int } {
	mock.lockListCards.RLock()
	calls := mock.calls.ListCards
	mock.lockListCards.RUnlock()
	return calls
}

// recorder collects published snapshots and feedback cues.
type recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
	cues      []Cue
}

func (r *recorder) Publish(kind string, payload any) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if snap, ok := payload.(Snapshot); ok && kind == EventSnapshot {
		r.snapshots = append(r.snapshots, snap)
	}
	return uint64(len(r.snapshots))
}

func (r *recorder) Notify(cue Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, cue)
}

func (r *recorder) Kinds() []PhaseKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PhaseKind, len(r.snapshots))
	for i, s := range r.snapshots {
		out[i] = s.Phase.Kind
	}
	return out
}

func (r *recorder) Cues() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Cue, len(r.cues))
	copy(out, r.cues)
	return out
}
