package domain

import "errors"

// ErrEmptyQuery is returned when a query is empty after trimming whitespace.
var ErrEmptyQuery = errors.New("empty query")

// ErrSessionActive is returned when a query is submitted while another one is still streaming.
var ErrSessionActive = errors.New("a query is already in progress")

// ErrMalformedEvent is returned when a stream payload cannot be decoded into a StreamEvent.
var ErrMalformedEvent = errors.New("malformed stream event")

// ErrInputTooLarge is returned when a query exceeds the configured size limit.
var ErrInputTooLarge = errors.New("input exceeds maximum allowed size")

// ErrInvalidUTF8 is returned when a query contains invalid UTF-8 sequences.
var ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
