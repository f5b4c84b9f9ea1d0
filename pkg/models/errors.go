package models

import "errors"

var (
	ErrUnknownEvent  = errors.New("unknown event code")
	ErrInvalidSeason = errors.New("invalid season")
)
