package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Messaging errors
	ErrMessageNotFound  = errors.New("message not found")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrGroupNotFound    = errors.New("study group not found")
	ErrNotGroupMember   = errors.New("not an approved group member")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
