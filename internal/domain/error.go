package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound              = errors.New("entity not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrPlanNotFound          = errors.New("plan offering not found")
	ErrUpstream              = errors.New("record store request failed")
	ErrStaleSelection        = errors.New("plan selected outside of the plan step")
	ErrUnauthorizedAdmin     = errors.New("admin action from an unauthorized chat")
	ErrNoPendingRegistration = errors.New("no pending registration for receipt")
	ErrLockNotAcquired       = errors.New("lock not acquired")
)
