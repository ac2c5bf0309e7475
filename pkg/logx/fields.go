package logx

const (
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldDurationMs      = "duration-ms"
	FieldError           = "error"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldStack           = "stack"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"

	FieldPeer        = "peer"
	FieldFingerprint = "fingerprint"
	FieldSession     = "session"
	FieldAttempt     = "attempt"
	FieldBatchSize   = "batch-size"
	FieldWave        = "wave"
	FieldSource      = "source"
	FieldPath        = "path"
	FieldGiftID      = "gift-id"
)
