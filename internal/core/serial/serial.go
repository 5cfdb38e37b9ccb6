// Package serial normalizes raw serial-number input into a validated,
// deduplicated batch.
package serial

import (
	"regexp"
	"strings"
)

// serialPattern matches one well-formed hardware serial: alphanumeric,
// 8-20 characters.
var (
	serialPattern = regexp.MustCompile(`^[A-Za-z0-9]{8,20}$`)
	separators    = regexp.MustCompile(`[,\s]+`)
)

// Report is the outcome of normalizing one block of raw input. Serials holds
// the validated, upper-cased, deduplicated batch in first-seen order.
type Report struct {
	Serials    []string
	Invalid    []string
	Duplicates []string
}

// HasWarnings reports whether any input token was rejected or repeated.
func (r Report) HasWarnings() bool {
	return len(r.Invalid) > 0 || len(r.Duplicates) > 0
}

// Valid reports whether the token is a well-formed serial.
func Valid(token string) bool {
	return serialPattern.MatchString(token)
}

// Normalize splits raw text on newlines, commas, and whitespace, validates
// each token, canonicalizes case, and removes duplicates. Invalid and
// duplicate tokens are reported, not fatal.
func Normalize(text string) Report {
	report := Report{}

	text = strings.TrimSpace(text)
	if text == "" {
		return report
	}

	seen := make(map[string]struct{})
	for _, token := range separators.Split(text, -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if !Valid(token) {
			report.Invalid = append(report.Invalid, token)
			continue
		}
		canonical := strings.ToUpper(token)
		if _, ok := seen[canonical]; ok {
			report.Duplicates = append(report.Duplicates, canonical)
			continue
		}
		seen[canonical] = struct{}{}
		report.Serials = append(report.Serials, canonical)
	}

	return report
}
