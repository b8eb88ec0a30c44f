package rest

import (
	"context"
	"sync"
	"time"

	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/service/coordinator"
)

var _ captureService = &captureServiceMock{}

type captureServiceMock struct {
	SetLanguagePairFunc func(native, target string) (domain.LanguagePair, error)
	HandleFinalTextFunc func(text string) coordinator.Submission
	RetryIfPossibleFunc func() bool
	ConfirmFunc         func(ctx context.Context) (*domain.VocabularyCard, error)
	SnapshotFunc        func() coordinator.Snapshot

	calls struct {
		HandleFinalText []struct {
			Text string
		}
		DismissPreview []struct{}
		CancelInFlight []struct {
			ClearPreview bool
		}
	}
	lockHandleFinalText sync.RWMutex
	lockDismissPreview  sync.RWMutex
	lockCancelInFlight  sync.RWMutex
}

func (mock *captureServiceMock) SetLanguagePair(native, target string) (domain.LanguagePair, error) {
	if mock.SetLanguagePairFunc == nil {
		panic("captureServiceMock.SetLanguagePairFunc: method is nil but captureService.SetLanguagePair was just called")
	}
	return mock.SetLanguagePairFunc(native, target)
}

func (mock *captureServiceMock) HandleFinalText(text string) coordinator.Submission {
	if mock.HandleFinalTextFunc == nil {
		panic("captureServiceMock.HandleFinalTextFunc: method is nil but captureService.HandleFinalText was just called")
	}
	mock.lockHandleFinalText.Lock()
	mock.calls.HandleFinalText = append(mock.calls.HandleFinalText, struct{ Text string }{Text: text})
	mock.lockHandleFinalText.Unlock()
	return mock.HandleFinalTextFunc(text)
}

func (mock *captureServiceMock) HandleFinalTextCalls() []struct{ Text string } {
	mock.lockHandleFinalText.RLock()
	defer mock.lockHandleFinalText.RUnlock()
	return mock.calls.HandleFinalText
}

func (mock *captureServiceMock) RetryIfPossible() bool {
	if mock.RetryIfPossibleFunc == nil {
		panic("captureServiceMock.RetryIfPossibleFunc: method is nil but captureService.RetryIfPossible was just called")
	}
	return mock.RetryIfPossibleFunc()
}

func (mock *captureServiceMock) DismissPreview() {
	mock.lockDismissPreview.Lock()
	mock.calls.DismissPreview = append(mock.calls.DismissPreview, struct{}{})
	mock.lockDismissPreview.Unlock()
}

func (mock *captureServiceMock) DismissPreviewCalls() []struct{} {
	mock.lockDismissPreview.RLock()
	defer mock.lockDismissPreview.RUnlock()
	return mock.calls.DismissPreview
}

func (mock *captureServiceMock) CancelInFlight(clearPreview bool) {
	mock.lockCancelInFlight.Lock()
	mock.calls.CancelInFlight = append(mock.calls.CancelInFlight, struct{ ClearPreview bool }{ClearPreview: clearPreview})
	mock.lockCancelInFlight.Unlock()
}

func (mock *captureServiceMock) CancelInFlightCalls() []struct{ ClearPreview bool } {
	mock.lockCancelInFlight.RLock()
	defer mock.lockCancelInFlight.RUnlock()
	return mock.calls.CancelInFlight
}

func (mock *captureServiceMock) Confirm(ctx context.Context) (*domain.VocabularyCard, error) {
	if mock.ConfirmFunc == nil {
		panic("captureServiceMock.ConfirmFunc: method is nil but captureService.Confirm was just called")
	}
	return mock.ConfirmFunc(ctx)
}

func (mock *captureServiceMock) Snapshot() coordinator.Snapshot {
	if mock.SnapshotFunc == nil {
		return coordinator.Snapshot{Phase: coordinator.Phase{Kind: coordinator.PhaseIdle}}
	}
	return mock.SnapshotFunc()
}

var _ cardLister = &cardListerMock{}

type cardListerMock struct {
	RecentCardsFunc func(ctx context.Context, limit int) ([]domain.VocabularyCard, error)

	calls struct {
		RecentCards []struct {
			Limit int
		}
	}
	lockRecentCards sync.RWMutex
}

func (mock *cardListerMock) RecentCards(ctx context.Context, limit int) ([]domain.VocabularyCard, error) {
	if mock.RecentCardsFunc == nil {
		panic("cardListerMock.RecentCardsFunc: method is nil but cardLister.RecentCards was just called")
	}
	mock.lockRecentCards.Lock()
	mock.calls.RecentCards = append(mock.calls.RecentCards, struct{ Limit int }{Limit: limit})
	mock.lockRecentCards.Unlock()
	return mock.RecentCardsFunc(ctx, limit)
}

func (mock *cardListerMock) RecentCardsCalls() []struct{ Limit int } {
	mock.lockRecentCards.RLock()
	defer mock.lockRecentCards.RUnlock()
	return mock.calls.RecentCards
}

var _ usageReader = &usageReaderMock{}

type usageReaderMock struct {
	SavedOnFunc func(ctx context.Context, day time.Time) (int, error)

	calls struct {
		SavedOn []struct {
			Day time.Time
		}
	}
	lockSavedOn sync.RWMutex
}

func (mock *usageReaderMock) SavedOn(ctx context.Context, day time.Time) (int, error) {
	if mock.SavedOnFunc == nil {
		panic("usageReaderMock.SavedOnFunc: method is nil but usageReader.SavedOn was just called")
	}
	mock.lockSavedOn.Lock()
	mock.calls.SavedOn = append(mock.calls.SavedOn, struct{ Day time.Time }{Day: day})
	mock.lockSavedOn.Unlock()
	return mock.SavedOnFunc(ctx, day)
}

func (mock *usageReaderMock) SavedOnCalls() []struct{ Day time.Time } {
	mock.lockSavedOn.RLock()
	defer mock.lockSavedOn.RUnlock()
	return mock.calls.SavedOn
}
