package types

// SuccessEnvelope wraps non-cart JSON payloads such as health checks.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Cause is only filled for client
// errors.
type APIError struct {
	Code    string `json:"code"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
