package domain

import "errors"

// ErrDuplicateMessage is returned when a message ID has already been filed.
var ErrDuplicateMessage = errors.New("duplicate message id")
