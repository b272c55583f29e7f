package util

import "time"

// RFC3339Now returns the current UTC time formatted as RFC3339.
func RFC3339Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// HumanTime returns the current local time in a readable form for notifications.
func HumanTime() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
