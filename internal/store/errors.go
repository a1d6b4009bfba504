package store

import (
	"errors"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
)

// ErrNotFound is returned by Get for unknown ids
var ErrNotFound = errors.New("history entry not found")

func errorCode(err error) string {
	if code := mdwerror.GetCode(err); code != mdwerror.CodeUnknown {
		return string(code)
	}
	return ""
}

func dbError(err error, message, operation string) error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(operation)
}

func notFound(id string) error {
	return mdwerror.Wrap(ErrNotFound, "history entry not found").
		WithCode(mdwerror.CodeNotFound).
		WithOperation("store.Get").
		WithDetail("id", id)
}
