package domain

// Status is the classified outcome of a single (key, endpoint) probe.
type Status string

const (
	StatusWorked           Status = "WORKED"
	StatusUnauthenticated  Status = "UNAUTHENTICATED"
	StatusPermissionDenied Status = "PERMISSION_DENIED"
	StatusInvalidArgument  Status = "INVALID_ARGUMENT"
	StatusRequestDenied    Status = "REQUEST_DENIED"
	StatusBlocked          Status = "BLOCKED"
	StatusBadRequest       Status = "BAD_REQUEST"
	StatusRateLimited      Status = "RATE_LIMITED"
	StatusNetworkError     Status = "NETWORK_ERROR"
	StatusUnknown          Status = "UNKNOWN"
)

// All statuses the classifier may produce. Useful for validation in tests
// and for API consumers enumerating possible values.
var AllStatuses = []Status{
	StatusWorked,
	StatusUnauthenticated,
	StatusPermissionDenied,
	StatusInvalidArgument,
	StatusRequestDenied,
	StatusBlocked,
	StatusBadRequest,
	StatusRateLimited,
	StatusNetworkError,
	StatusUnknown,
}

// Working reports whether the status means the key was accepted by the service.
func (s Status) Working() bool { return s == StatusWorked }
