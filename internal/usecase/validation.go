package usecase

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^09\d{9}$`)
	gmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@gmail\.com$`)
)

// ValidFullName accepts names of at least two words.
func ValidFullName(s string) bool {
	return len(strings.Fields(s)) >= 2
}

// ValidPhone accepts 11-digit mobile numbers starting with 09.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ValidGmail accepts local-part@gmail.com addresses only.
func ValidGmail(s string) bool {
	return gmailPattern.MatchString(s)
}
