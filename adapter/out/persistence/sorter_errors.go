// Package persistence stores filed messages.
package persistence

import (
	"errors"

	"sorter_server/core/domain"
)

var (
	ErrDuplicate    = domain.ErrDuplicateMessage
	ErrInvalidInput = errors.New("invalid message")
)
