package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/eventbus"
	"github.com/yaoqiang/voxwords/internal/service/coordinator"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error  string               `json:"error"`
	Fields []fieldErrorResponse `json:"fields,omitempty"`
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type pairRequest struct {
	Native string `json:"native"`
	Target string `json:"target"`
}

type pairResponse struct {
	Native string `json:"native"`
	Target string `json:"target"`
}

type finalTextRequest struct {
	Text string `json:"text"`
}

type cancelRequest struct {
	ClearPreview bool `json:"clearPreview"`
}

type cardResponse struct {
	ID             string    `json:"id"`
	Word           string    `json:"word"`
	Translation    string    `json:"translation,omitempty"`
	NativeLanguage string    `json:"nativeLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type phaseResponse struct {
	Kind      string `json:"kind"`
	RequestID string `json:"requestId,omitempty"`
	Text      string `json:"text,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type snapshotResponse struct {
	Version uint64        `json:"version"`
	Pair    *pairResponse `json:"pair,omitempty"`
	Phase   phaseResponse `json:"phase"`
	Card    *cardResponse `json:"card,omitempty"`
}

type feedbackResponse struct {
	Cue string `json:"cue"`
}

type eventResponse struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Payload   any       `json:"payload"`
}

type eventsResponse struct {
	Events []eventResponse `json:"events"`
	Last   uint64          `json:"last"`
}

type cardsResponse struct {
	Cards []cardResponse `json:"cards"`
}

type usageResponse struct {
	Day   string `json:"day"`
	Saved int    `json:"saved"`
}

func toCardResponse(c *domain.VocabularyCard) *cardResponse {
	if c == nil {
		return nil
	}
	return &cardResponse{
		ID:             c.ID.String(),
		Word:           c.Word,
		Translation:    c.Translation,
		NativeLanguage: c.NativeLanguage.String(),
		TargetLanguage: c.TargetLanguage.String(),
		Status:         c.Status.String(),
		CreatedAt:      c.CreatedAt,
	}
}

func toPairResponse(p domain.LanguagePair) *pairResponse {
	if p.IsZero() {
		return nil
	}
	return &pairResponse{Native: p.Source.String(), Target: p.Target.String()}
}

func toSnapshotResponse(s coordinator.Snapshot) snapshotResponse {
	phase := phaseResponse{
		Kind:      s.Phase.Kind.String(),
		Code:      string(s.Phase.Code),
		Message:   s.Phase.Message,
		Retryable: s.Phase.Retryable,
	}
	if req := s.Phase.Request; req != nil {
		phase.RequestID = req.ID.String()
		phase.Text = req.Text
	}
	return snapshotResponse{
		Version: s.Version,
		Pair:    toPairResponse(s.Pair),
		Phase:   phase,
		Card:    toCardResponse(s.Card),
	}
}

func toEventResponse(e eventbus.Event) eventResponse {
	payload := e.Payload
	switch p := e.Payload.(type) {
	case coordinator.Snapshot:
		payload = toSnapshotResponse(p)
	case coordinator.Cue:
		payload = feedbackResponse{Cue: string(p)}
	}
	return eventResponse{
		Seq:       e.Seq,
		Timestamp: e.Timestamp,
		Kind:      e.Kind,
		Payload:   payload,
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "validation error"}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		for _, fe := range ve.Errors {
			resp.Fields = append(resp.Fields, fieldErrorResponse{Field: fe.Field, Message: fe.Message})
		}
	} else {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}
