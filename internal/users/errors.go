package users

import "errors"

var (
	// ErrNotFound means no account matches the given id or email.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotLawyer means the targeted account is not a lawyer.
	ErrNotLawyer = errors.New("user is not a lawyer")
	// ErrAlreadyApproved means the lawyer was approved earlier.
	ErrAlreadyApproved = errors.New("lawyer already approved")
	// ErrInvalidInput covers malformed registration or role input.
	ErrInvalidInput = errors.New("invalid input")
)
