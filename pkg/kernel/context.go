package kernel

// ContextKey namespaces values stored on context.Context and Fiber locals.
type ContextKey string

const (
	// PrincipalContextKey is the key the principal resolver stores the
	// resolved Principal under.
	PrincipalContextKey ContextKey = "principal"

	// RequestIDKey is the key the request-id middleware stores under.
	RequestIDKey ContextKey = "request_id"
)
