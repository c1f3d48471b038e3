package auth

import (
	"errors"
	"fmt"
)

// ErrEmptyUsername is returned by Login before any I/O.
var ErrEmptyUsername = errors.New("username cannot be empty")

// PersistError reports that the upstream call succeeded but saving the
// resulting cookie failed. Cookie and Body let a caller retry the save
// without repeating the request.
type PersistError struct {
	Key    string
	Cookie string
	Body   string
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("request succeeded but saving %s failed: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
