package redis

import "errors"

var (
	ErrSubscribeFailed = errors.New("redis subscribe failed")
	ErrPublishFailed   = errors.New("redis publish failed")
)
