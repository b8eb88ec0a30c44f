package coordinator

import (
	"errors"
	"strings"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// FailureCode is the machine-readable reason behind PhaseError.
type FailureCode string

const (
	FailureSameLanguage  FailureCode = "same_language"
	FailureNotConfigured FailureCode = "not_configured"
	FailurePackRequired  FailureCode = "language_pack_required"
	FailureUnsupported   FailureCode = "unsupported_pair"
	FailureStarting      FailureCode = "backend_starting"
	FailureBusy          FailureCode = "backend_busy"
	FailureTimeout       FailureCode = "timeout"
	FailureNotUnderstood FailureCode = "not_understood"
	FailureTranslation   FailureCode = "failed"
)

type failure struct {
	code      FailureCode
	message   string
	retryable bool
}

var (
	failSameLanguage  = failure{FailureSameLanguage, "Pick two different languages.", false}
	failNotConfigured = failure{FailureNotConfigured, "Choose your languages first.", false}
	failPackRequired  = failure{FailurePackRequired, "Download the language pack, then try again.", true}
	failUnsupported   = failure{FailureUnsupported, "This language pair isn't supported.", true}
	failStarting      = failure{FailureStarting, "Translation is still starting. Try again in a moment.", true}
	failBusy          = failure{FailureBusy, "Translation service is busy. Try again.", true}
	failTimeout       = failure{FailureTimeout, "Translation timed out.", true}
	failNotUnderstood = failure{FailureNotUnderstood, "Didn't catch that. Try again.", true}
	failTranslation   = failure{FailureTranslation, "Translation failed. Tap to retry.", true}
)

// Lowercase fragments of transport errors that carry a known meaning even
// when the backend does not wrap a domain error.
var transportSignatures = []struct {
	fragment string
	failure  failure
}{
	{"not configured", failNotConfigured},
	{"still starting", failStarting},
	{"not ready", failStarting},
	{"language pack", failPackRequired},
	{"downloading", failPackRequired},
	{"unsupported", failUnsupported},
	{"not supported", failUnsupported},
}

// describeError maps a pipeline outcome to what the user sees.
func describeError(err error) failure {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return failNotConfigured
	case errors.Is(err, domain.ErrLanguagePackRequired):
		return failPackRequired
	case errors.Is(err, domain.ErrLanguagePairUnsupported):
		return failUnsupported
	case errors.Is(err, domain.ErrTimeout):
		return failBusy
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range transportSignatures {
		if strings.Contains(msg, sig.fragment) {
			return sig.failure
		}
	}
	return failTranslation
}
