package cable

import "errors"

// PreconditionError reports a user action attempted without what it needs,
// such as editing with no model selected. Nothing is modified.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// ErrNoActiveModel is returned by operations on an empty registry.
var ErrNoActiveModel = &PreconditionError{Msg: "list of cable models to edit is empty"}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
