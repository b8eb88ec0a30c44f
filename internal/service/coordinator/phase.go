package coordinator

import (
	"time"

	"github.com/google/uuid"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// PhaseKind names a coordinator state.
type PhaseKind string

const (
	PhaseIdle        PhaseKind = "IDLE"
	PhaseTranslating PhaseKind = "TRANSLATING"
	PhasePreview     PhaseKind = "PREVIEW"
	PhaseError       PhaseKind = "ERROR"
)

func (k PhaseKind) String() string { return string(k) }

// Request is one speech-to-card attempt. Retrying re-submits the same ID.
type Request struct {
	ID   uuid.UUID
	Text string
	Pair domain.LanguagePair
}

// Phase is the coordinator state. Request is set in PhaseTranslating and
// PhaseError, Card in PhasePreview, Code, Message and Retryable in
// PhaseError.
type Phase struct {
	Kind      PhaseKind
	Request   *Request
	Card      *domain.VocabularyCard
	Code      FailureCode
	Message   string
	Retryable bool
}

// Snapshot is the externally observable projection of the coordinator.
// Card is the preview card for every phase but PhaseIdle: a placeholder
// while translating, the failed attempt on error, the result on preview.
type Snapshot struct {
	Version uint64
	Pair    domain.LanguagePair
	Phase   Phase
	Card    *domain.VocabularyCard
}

// Submission is the outcome of HandleFinalText.
type Submission int

const (
	// SubmissionIgnored means the text was empty after trimming.
	SubmissionIgnored Submission = iota
	// SubmissionBusy means a request is already translating.
	SubmissionBusy
	// SubmissionAccepted means a new request started translating.
	SubmissionAccepted
	// SubmissionRejected means the request failed a precondition and the
	// coordinator moved straight to PhaseError.
	SubmissionRejected
)

func (s Submission) String() string {
	switch s {
	case SubmissionIgnored:
		return "ignored"
	case SubmissionBusy:
		return "busy"
	case SubmissionAccepted:
		return "accepted"
	case SubmissionRejected:
		return "rejected"
	}
	return "unknown"
}

// Cue is a user feedback signal, rendered as haptics on devices.
type Cue string

const (
	CueSuccess Cue = "success"
	CueFailure Cue = "failure"
)

func placeholderCard(req Request, now time.Time) *domain.VocabularyCard {
	return &domain.VocabularyCard{
		ID:             req.ID,
		Word:           req.Text,
		NativeLanguage: req.Pair.Source,
		TargetLanguage: req.Pair.Target,
		Status:         domain.CardStatusTextOnly,
		CreatedAt:      now,
	}
}

func completeCard(req Request, translation string, now time.Time) *domain.VocabularyCard {
	card := placeholderCard(req, now)
	card.Translation = translation
	card.Status = domain.CardStatusComplete
	return card
}
