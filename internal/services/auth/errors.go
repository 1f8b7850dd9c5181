package auth

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidToken = errors.New("invalid or expired token")
)

const (
	msgUsernameTaken = "A user with that username already exists"
	msgEmailTaken    = "A user with that email already exists"
	msgCodeMissing   = "Confirmation code was not requested, sign up first"
	msgCodeExpired   = "Confirmation code has expired, request a new one"
	msgCodeInvalid   = "Invalid confirmation code"
)
