// Package model defines the domain types used across the application.
package model

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// dateLayout is the upstream YYYYMMDD encoding of a screening date.
const dateLayout = "20060102"

// ErrInvalidDate is returned for identifiers that are not 8-digit calendar dates.
var ErrInvalidDate = errors.New("invalid date identifier")

// DateID identifies a screening date as an 8-digit YYYYMMDD string.
type DateID string

// ParseDateID validates s and returns it as a DateID.
func ParseDateID(s string) (DateID, error) {
	if len(s) != len(dateLayout) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateID(s), nil
}

// Time returns the calendar date in UTC.
func (d DateID) Time() (time.Time, error) {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	return t, nil
}

// Display renders the date as YYYY-MM-DD, or the raw value if it does not parse.
func (d DateID) Display() string {
	t, err := d.Time()
	if err != nil {
		return string(d)
	}
	return t.Format(time.DateOnly)
}

// DateSet is an unordered set of screening dates.
type DateSet map[DateID]struct{}

// NewDateSet returns a set holding ids.
func NewDateSet(ids ...DateID) DateSet {
	s := make(DateSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s DateSet) Add(id DateID) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s DateSet) Has(id DateID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of dates in the set.
func (s DateSet) Len() int {
	return len(s)
}

// Difference returns the dates in s that are not in other.
func (s DateSet) Difference(other DateSet) DateSet {
	out := make(DateSet)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Union returns a new set holding the dates of both s and other.
func (s DateSet) Union(other DateSet) DateSet {
	out := make(DateSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the dates in ascending order.
func (s DateSet) Sorted() []DateID {
	out := make([]DateID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Strings returns the dates in ascending order as plain strings.
func (s DateSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, id := range sorted {
		out[i] = string(id)
	}
	return out
}
