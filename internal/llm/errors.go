package llm

import "errors"

// ErrNotConfigured marks a missing or placeholder API credential. Retrying
// cannot help; callers should surface it as a configuration error rather
// than a transient model failure.
var ErrNotConfigured = errors.New("llm: api key is not configured")

// ErrEmptyResponse marks a reply with no usable content.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// PermanentError wraps an error that retrying will not fix, such as a
// context-length overflow.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// NewPermanentError wraps err as permanent. nil stays nil.
func NewPermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is wrapped as a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
