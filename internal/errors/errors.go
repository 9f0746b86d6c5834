package errors

import "errors"

// Lookup errors.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrUserNotFound        = errors.New("user not found")
)

// Relay errors.
var (
	ErrAlreadyConnected = errors.New("application already has a websocket connected")
	ErrChannelClosed    = errors.New("relay channel closed")
	ErrChannelFull      = errors.New("relay channel full")
)
