package model

import "regexp"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether s is a strict YYYY-MM-DD calendar date string.
func ValidDate(s string) bool {
	return datePattern.MatchString(s)
}
