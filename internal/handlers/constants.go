package handlers

const (
	OAuthStateCookieName = "oauth_state"

	RequestIDHeader    = "X-Request-ID"
	SynthesisKeyHeader = "X-Synthesis-Key"

	maxJSONBody = 1 << 20

	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInternalServerError = "Internal server error"
	ErrInvalidFile         = "invalid file"
	ErrFileTooLarge        = "file too large"
)
