package deploy

import "strings"

// StatusClass is the classification of one status response.
type StatusClass string

const (
	StatusSucceeded    StatusClass = "succeeded"
	StatusFailed       StatusClass = "failed"
	StatusProvisioning StatusClass = "provisioning"
	StatusUnknown      StatusClass = "unknown"
)

// Keyword sets for classifying the vendor's free-form status text. The vendor
// API prints prose, not a structured enum, so these are configuration-like
// constants kept in one place: when the vendor changes wording, this is the
// only spot to touch.
var (
	successKeywords = []string{
		"mesh provisioned successfully",
		"success",
		"deployed",
	}
	failureKeywords = []string{
		"failed",
		"failure",
		"error",
	}
	provisioningKeywords = []string{
		"provisioning",
		"in progress",
		"pending",
		"building",
	}
)

// Classify maps status text onto a StatusClass by case-insensitive keyword
// matching. Success is checked first so "Mesh provisioned successfully." never
// trips the failure keywords; failure is checked before provisioning so
// "provisioning failed" is terminal. Unrecognized text is StatusUnknown and
// the caller keeps polling.
func Classify(status string) StatusClass {
	s := strings.ToLower(status)
	for _, kw := range successKeywords {
		if strings.Contains(s, kw) {
			return StatusSucceeded
		}
	}
	for _, kw := range failureKeywords {
		if strings.Contains(s, kw) {
			return StatusFailed
		}
	}
	for _, kw := range provisioningKeywords {
		if strings.Contains(s, kw) {
			return StatusProvisioning
		}
	}
	return StatusUnknown
}

// Terminal reports whether a class ends the polling loop.
func (c StatusClass) Terminal() bool {
	return c == StatusSucceeded || c == StatusFailed
}
