package entity

import "errors"

var (
	// Ingestion errors
	ErrUpstreamUnavailable = errors.New("upstream directory unavailable")
	ErrEmptyRun            = errors.New("ingestion run produced no events")
	ErrNoUsableID          = errors.New("record has no usable identifier")
	ErrRefreshInProgress   = errors.New("a refresh is already in progress")

	// Query errors
	ErrRoutingUnavailable = errors.New("routing collaborator unavailable")
)
