package ics

import (
	"errors"
	"time"
)

var ErrFeedNotFound = errors.New("feed not found")

// Feed is a subscribed external ICS calendar. Its events are imported as
// read-only and never written back.
type Feed struct {
	ID              string
	Name            string
	URL             string
	Color           string
	LastRefreshedAt *time.Time
}
