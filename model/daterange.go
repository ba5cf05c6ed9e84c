package model

import (
	"fmt"
	"time"
)

// DateRange is the acquisition window of an analysis run
type DateRange struct {
	Start time.Time
	End   time.Time
}

// InvalidDateRangeError indicates a date range whose start falls after its end
type InvalidDateRangeError struct {
	Start time.Time
	End   time.Time
}

// Error implements the error interface
func (err InvalidDateRangeError) Error() string {
	return fmt.Sprintf("Invalid date range: start date %v is after end date %v",
		err.Start.Format("2006-01-02"), err.End.Format("2006-01-02"))
}

// Validate returns an InvalidDateRangeError if the range is inverted
func (dr DateRange) Validate() error {
	if dr.Start.After(dr.End) {
		return InvalidDateRangeError{Start: dr.Start, End: dr.End}
	}
	return nil
}

// StacInterval formats the range as a STAC search datetime interval
func (dr DateRange) StacInterval() string {
	return dr.Start.UTC().Format("2006-01-02T15:04:05Z") + "/" + dr.End.UTC().Format("2006-01-02T15:04:05Z")
}
