package caches

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Reason string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("creation of cache failed for reason : %s", ve.Reason)
}

var (
	// ErrNoEntry is returned when nothing is stored under a key.
	ErrNoEntry = errors.New("no value found in cache")
)
