package domain

import "errors"

var (
	// ErrDuplicateLink means the (user, url) pair already exists.
	ErrDuplicateLink = errors.New("link already exists for this user")

	// ErrNotFound means no record matched the given id and owner.
	ErrNotFound = errors.New("link not found")

	// ErrNotAuthenticated means no session credential was available.
	ErrNotAuthenticated = errors.New("not authenticated")
)
