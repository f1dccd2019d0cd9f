package service

import "errors"

// ErrInvalidRequest marks submissions rejected before any record is created.
var ErrInvalidRequest = errors.New("invalid request")

// ErrInvalidCredentials is returned on login with a wrong email or password.
var ErrInvalidCredentials = errors.New("incorrect email or password")
