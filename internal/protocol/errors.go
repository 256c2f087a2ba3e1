package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Request layer.
	ErrBadRequest     = "E_BAD_REQUEST"
	ErrInvalidSetting = "E_INVALID_SETTING"
	ErrWorldMismatch  = "E_WORLD_MISMATCH"
	ErrTooFewPoints   = "E_TOO_FEW_POINTS"
	ErrLimitExceeded  = "E_LIMIT_EXCEEDED"
	ErrUnknownJob     = "E_UNKNOWN_JOB"
	ErrInternal       = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrInvalidSetting:  {},
	ErrWorldMismatch:   {},
	ErrTooFewPoints:    {},
	ErrLimitExceeded:   {},
	ErrUnknownJob:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
