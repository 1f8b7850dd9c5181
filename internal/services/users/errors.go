package users

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrRoleChangeForbidden = errors.New("only administrators can change roles")
)

const (
	msgUsernameTaken = "A user with that username already exists"
	msgEmailTaken    = "A user with that email already exists"
	msgInvalidRole   = "Value should be one of user moderator admin"
)
