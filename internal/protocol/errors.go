package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Commit pipeline.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoResource    = "E_NO_RESOURCE"    // affordability failure
	ErrStale         = "E_STALE"          // footprint invalidated since client check
	ErrNoPermission  = "E_NO_PERMISSION"  // ownership violation
	ErrInvalidTarget = "E_INVALID_TARGET" // unknown site/unit reference
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrNoResource:      {},
	ErrStale:           {},
	ErrNoPermission:    {},
	ErrInvalidTarget:   {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
