package models

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateName   = errors.New("duplicate name")
	ErrAlreadyBorrowed = errors.New("already borrowed by this user")
	ErrOutOfStock      = errors.New("no books available")
	ErrNotEnoughStock  = errors.New("not enough stock")
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden access")
	ErrUnauthorized    = errors.New("unauthorized access")
)
