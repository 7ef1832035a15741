package questionnaire

import (
	_ "embed"
)

//go:embed seed/hr-interview.json
var seedHRInterview []byte

// Seed returns the bundled HR interview questionnaire.
func Seed() []byte {
	return append([]byte(nil), seedHRInterview...)
}
