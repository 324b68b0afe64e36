package error

const (
	// 0 ~ 999: success
	SUCCESS = 0

	// 40000 ~ 40099: request errors
	BAD_REQUEST_BODY     = 40000 // 400 - body is not valid JSON
	BAD_REQUEST_ENCODING = 40001 // 400 - Content-Encoding could not be decoded
	BAD_REQUEST_PARAMS   = 40002 // 400 - invalid parameters

	NOT_FOUND          = 40400 // 404
	METHOD_NOT_ALLOWED = 40500 // 405
	PAYLOAD_TOO_LARGE  = 41300 // 413 - body exceeds INGEST__MAX_BODY_BYTES

	// 50000 ~ 50199: server errors
	INTERNAL_ERROR      = 50000 // 500
	DATABASE_ERROR      = 50001 // 500 - commit or insert failed
	SERVICE_UNAVAILABLE = 50002 // 503
)
