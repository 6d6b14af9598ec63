package domain

import "errors"

var ErrAuthExpired = errors.New("authentication expired")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")
var ErrValidation = errors.New("invalid request")
var ErrNotFound = errors.New("not found")
var ErrUnreachable = errors.New("server unreachable")
