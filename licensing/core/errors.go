package core

import "errors"

var (
	ErrNotFound           = errors.New("license not found")
	ErrConflict           = errors.New("serial number already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyBound       = errors.New("license is bound to another device")
	ErrNotActivatable     = errors.New("license status does not allow activation")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
