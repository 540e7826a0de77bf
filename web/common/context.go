package common

// Keys set on the gin context by middlewares.
const (
	RequestIDKey = "request_id"
	ClaimsKey    = "claims"
)
