// Package progress derives completion and time status from an interview record.
package progress

import (
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"math"
	"strings"
	"time"
)

// Band classifies the time spent against the planned time.
type Band string

const (
	BandNeutral Band = "neutral"
	BandUnder   Band = "under"
	BandNear    Band = "near"
	BandOver    Band = "over"
)

const (
	underThreshold = 0.9
	nearThreshold  = 1.1
)

// Answered reports whether an answer counts towards completion.
// Strings must contain more than whitespace. Any other non-nil value counts.
func Answered(answer any) bool {
	switch a := answer.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(a) != ""
	default:
		return true
	}
}

// Counts returns the answered and total number of questions in the sessions the interview has touched.
func Counts(iv models.Interview) (answered, total int) {
	for _, session := range iv.Sessions {
		if session == nil {
			continue
		}
		for _, question := range session.Questions {
			total++
			if question != nil && Answered(question.Answer) {
				answered++
			}
		}
	}
	return answered, total
}

// Percent is the rounded share of answered questions. An interview without touched questions is at 0.
func Percent(iv models.Interview) int {
	answered, total := Counts(iv)
	return percent(answered, total)
}

func percent(answered, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(answered) / float64(total)))
}

// Classify compares actual with planned time. 90% and 110% of the plan are the inclusive upper bounds of under and
// near. Without a plan the band is neutral.
func Classify(actual, planned time.Duration) Band {
	if planned <= 0 {
		return BandNeutral
	}
	ratio := float64(actual) / float64(planned)
	switch {
	case ratio <= underThreshold:
		return BandUnder
	case ratio <= nearThreshold:
		return BandNear
	default:
		return BandOver
	}
}

// Minutes converts planned minutes as they appear in questionnaires.
func Minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// FormatDuration renders d as HH:MM:SS. Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60) //nolint:mnd // seconds per unit
}

// SessionSummary is the progress of one questionnaire session.
type SessionSummary struct {
	SessionID string `json:"sessionId"`
	Title     string `json:"title"`
	PlannedMs int64  `json:"plannedMs"`
	ActualMs  int64  `json:"actualMs"`
	Band      Band   `json:"band"`
	Answered  int    `json:"answered"`
	Questions int    `json:"questions"`
}

// Summary is the progress of a whole interview.
type Summary struct {
	Percent   int              `json:"percent"`
	Answered  int              `json:"answered"`
	Total     int              `json:"total"`
	Questions int              `json:"questions"`
	PlannedMs int64            `json:"plannedMs"`
	ActualMs  int64            `json:"actualMs"`
	Band      Band             `json:"band"`
	Elapsed   string           `json:"elapsed"`
	Sessions  []SessionSummary `json:"sessions"`
}

// Summarize reports per session progress in questionnaire order.
//
// Percent, Answered and Total follow Percent and only count touched questions. Questions is the number of questions
// in the questionnaire.
func Summarize(iv models.Interview, doc questionnaire.Document) Summary {
	answered, total := Counts(iv)
	planned := Minutes(doc.TotalDuration())
	summary := Summary{
		Percent:   percent(answered, total),
		Answered:  answered,
		Total:     total,
		Questions: doc.QuestionCount(),
		PlannedMs: planned.Milliseconds(),
		Sessions:  make([]SessionSummary, 0, len(doc.Sessions)),
	}

	var actual time.Duration
	for _, session := range doc.Sessions {
		sessionPlanned := Minutes(session.PlannedDurationMin)
		var sessionActual time.Duration
		row := SessionSummary{
			SessionID: session.SessionID,
			Title:     session.Title,
			PlannedMs: sessionPlanned.Milliseconds(),
			Questions: len(session.Questions),
		}
		if data := iv.Sessions[session.SessionID]; data != nil {
			sessionActual = time.Duration(data.ActualMs) * time.Millisecond
			for _, q := range data.Questions {
				if q != nil && Answered(q.Answer) {
					row.Answered++
				}
			}
		}
		row.ActualMs = sessionActual.Milliseconds()
		row.Band = Classify(sessionActual, sessionPlanned)
		actual += sessionActual
		summary.Sessions = append(summary.Sessions, row)
	}

	summary.ActualMs = actual.Milliseconds()
	summary.Band = Classify(actual, planned)
	summary.Elapsed = FormatDuration(actual)
	return summary
}
