package models

import (
	"encoding/json"
	"time"
)

// Questionnaire is an uploaded or built questionnaire document identified by the hash of its canonical form.
type Questionnaire struct {
	Hash      string    `json:"hash"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	// Document is the questionnaire as it was ingested. It is kept verbatim so that fields unknown to this program
	// survive the round trip to the export.
	Document json.RawMessage `json:"json"`
}

// Clone returns a copy that does not share the document bytes with q.
func (q Questionnaire) Clone() Questionnaire {
	q.Document = append(json.RawMessage(nil), q.Document...)
	return q
}
