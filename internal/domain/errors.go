package domain

import "errors"

// Sentinel errors for the intake path. These map to synchronous HTTP
// responses: missing headers are client errors, unresolved tenants and
// signature mismatches are authentication errors.
var (
	ErrMissingHeader    = errors.New("required header is missing")
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// PermanentError marks a materialization failure that no retry can fix,
// such as a payload missing required fields or unparseable JSON. The queue
// acknowledges the job without retrying instead of redelivering it.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return "permanent: " + e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err as a PermanentError. Wrapping nil returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is a PermanentError anywhere in its chain.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
