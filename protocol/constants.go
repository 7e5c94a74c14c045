package protocol

// JSON-RPC protocol version tag carried by every envelope.
const JSONRPCVersion = "2.0"

// ContentType is sent on every request.
const ContentType = "application/json"

// Well-known headers set from request metadata.
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)
