package postgres

import "errors"

var (
	ErrPayloadTooLarge = errors.New("notification payload exceeds the postgres limit")
	ErrListenFailed    = errors.New("postgres listen failed")
	ErrPublishFailed   = errors.New("postgres notify failed")
)
