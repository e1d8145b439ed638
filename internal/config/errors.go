package config

import (
	"errors"
	"fmt"
)

// ErrMissingRequired is matched by every MissingError via errors.Is.
var ErrMissingRequired = errors.New("config: required setting missing")

// MissingError reports a required environment variable that is unset or empty.
type MissingError struct {
	// Name is the environment variable, e.g. CHATBASE_API_KEY.
	Name string
}

// Error implements the error interface.
func (e *MissingError) Error() string {
	return fmt.Sprintf("config: %s is required in your environment/.env", e.Name)
}

// Is lets errors.Is(err, ErrMissingRequired) match.
func (e *MissingError) Is(target error) bool {
	return target == ErrMissingRequired
}
