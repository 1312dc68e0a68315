package main

import "errors"

var ErrUnknownBackend = errors.New("unknown bus backend")
