package usecase

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidInput       = crerr.New("invalid input")
	ErrUnknownSource      = crerr.New("unknown source")
	ErrMissingCredentials = crerr.New("missing credentials")
	ErrAllSourcesFailed   = crerr.New("all sources failed")
	ErrNoCachedData       = crerr.New("no cached data")
)
