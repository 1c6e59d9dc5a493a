package service

import "github.com/allsmog/zkauth-go/pkg/zkauth"

// Error sentinels re-exported from pkg/zkauth for convenient errors.Is
// checks against a Service call's return value. pkg/api maps each to its
// own HTTP status.
var (
	ErrInvalidArgument    = zkauth.ErrInvalidArgument
	ErrNotFound           = zkauth.ErrNotFound
	ErrUnauthenticated    = zkauth.ErrUnauthenticated
	ErrFailedPrecondition = zkauth.ErrFailedPrecondition
	ErrInternal           = zkauth.ErrInternal
)
