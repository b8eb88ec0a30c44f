package remote

// availabilityResponse is the body of GET /v1/languages/availability.
type availabilityResponse struct {
	Status string `json:"status"`
}

type pairRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	Translation string `json:"translation"`
}

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes the backend uses.
const (
	codeLanguagePackRequired = "language_pack_required"
	codeUnsupportedPair      = "unsupported_pair"
	codeNotReady             = "not_ready"
)
