package domain

import "fmt"

// EngineError is the unified error type for the roster engine.
// Each error has a numeric code and human-readable message.
type EngineError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("roster error %d: %s", e.Code, e.Message)
}

// Is matches any EngineError carrying the same code, so sentinels work
// with errors.Is after NewEngineError adds detail.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	return ok && t.Code == e.Code
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf("%s: %v", msg, cause)}
}

// ---- Generation errors (-32010 to -32039) ----

var (
	ErrInvalidCalendar    = &EngineError{Code: -32010, Message: "invalid calendar input"}
	ErrEmptyRoster        = &EngineError{Code: -32011, Message: "roster has no workers"}
	ErrManualEditConflict = &EngineError{Code: -32012, Message: "forced code conflicts with manual edit"}
	ErrUnderCapacity      = &EngineError{Code: -32013, Message: "no eligible duty for cell"}
	ErrPolicyInvalid      = &EngineError{Code: -32014, Message: "invalid policy"}
)

// ---- Grid / edit errors (-32040 to -32069) ----

var (
	ErrUnknownWorker   = &EngineError{Code: -32040, Message: "unknown worker"}
	ErrDayOutOfRange   = &EngineError{Code: -32041, Message: "day out of range"}
	ErrInvalidDutyCode = &EngineError{Code: -32042, Message: "invalid duty code"}
	ErrDuplicateWorker = &EngineError{Code: -32043, Message: "worker already exists"}
	ErrInvalidMonth    = &EngineError{Code: -32044, Message: "invalid roster month"}
	ErrInvalidWorker   = &EngineError{Code: -32045, Message: "invalid worker"}
)

// ---- Guard errors (-32100 to -32129) ----

var (
	ErrGenerationInFlight = &EngineError{Code: -32100, Message: "generation already in progress for roster"}
	ErrRateLimitExceeded  = &EngineError{Code: -32101, Message: "rate limit exceeded"}
)

// ---- Store / Config errors (-32130 to -32159) ----

var (
	ErrStoreInit        = &EngineError{Code: -32130, Message: "failed to initialize store"}
	ErrStoreQuery       = &EngineError{Code: -32131, Message: "store query failed"}
	ErrStoreWrite       = &EngineError{Code: -32132, Message: "store write failed"}
	ErrScheduleNotFound = &EngineError{Code: -32133, Message: "schedule not found"}
	ErrSnapshotCorrupt  = &EngineError{Code: -32134, Message: "snapshot checksum mismatch"}
	ErrOptimisticLock   = &EngineError{Code: -32135, Message: "optimistic lock conflict: schedule was modified concurrently"}
	ErrConfigInvalid    = &EngineError{Code: -32136, Message: "invalid configuration"}
	ErrWorkerNotFound   = &EngineError{Code: -32137, Message: "worker not found"}
)
