package utils

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidDateRange       = errors.New("invalid trip date range")
	ErrInvalidPage            = errors.New("invalid page parameter")
	ErrInvalidPageSize        = errors.New("invalid page size parameter")
	ErrItineraryNotFound      = errors.New("itinerary not found")
	ErrAccountNotFound        = errors.New("account not found")
	ErrEmailAlreadyExists     = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrDatabaseError          = errors.New("database error")
	ErrUnexpectedBehaviorOfAI = errors.New("unexpected generator response")
)
