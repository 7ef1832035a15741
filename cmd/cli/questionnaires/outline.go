package questionnaires

import (
	"bufio"
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

var ErrOutline = errors.NewSentinel("invalid outline")

// parseOutline feeds a plain text outline into b.
//
//	# Introduction | 10
//	- Walk me through your background. | 5
//	- Why this role?
//	+ exp-conflict
//
// Lines starting with # open a session and lines starting with - add a question to the last session. The optional
// number after | is the planned or expected duration in minutes. Lines starting with + copy the question with that
// id from library. Blank lines and lines starting with // are skipped.
func parseOutline(r io.Reader, b *questionnaire.Builder, library questionnaire.Document) error {
	scanner := bufio.NewScanner(r)
	sessionID := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		switch line[0] {
		case '#':
			title, minutes, err := splitDuration(line[1:], questionnaire.DefaultSessionMin)
			if err != nil {
				return errors.Wrap(err, "parse session", slog.Int("line", lineNo))
			}
			sessionID = b.AddSession(title, minutes)
		case '-':
			if sessionID == "" {
				return errors.Wrap(ErrOutline, "question before the first session", slog.Int("line", lineNo))
			}
			text, minutes, err := splitDuration(line[1:], questionnaire.DefaultQuestionMin)
			if err != nil {
				return errors.Wrap(err, "parse question", slog.Int("line", lineNo))
			}
			if text == "" {
				return errors.Wrap(ErrOutline, "question without text", slog.Int("line", lineNo))
			}
			if _, err = b.AddQuestion(sessionID, text, minutes); err != nil {
				return errors.Wrap(err, "add question", slog.Int("line", lineNo))
			}
		case '+':
			if sessionID == "" {
				return errors.Wrap(ErrOutline, "question before the first session", slog.Int("line", lineNo))
			}
			qid := strings.TrimSpace(line[1:])
			q, ok := findQuestion(library, qid)
			if !ok {
				return errors.Wrap(ErrOutline, "unknown library question",
					slog.Int("line", lineNo), slog.String("qid", qid))
			}
			if _, err := b.ImportQuestion(sessionID, q); err != nil {
				return errors.Wrap(err, "import question", slog.Int("line", lineNo))
			}
		default:
			return errors.Wrap(ErrOutline, fmt.Sprintf("unexpected line %q", line), slog.Int("line", lineNo))
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read outline")
	}
	if sessionID == "" {
		return errors.Wrap(ErrOutline, "outline has no sessions")
	}
	return nil
}

func splitDuration(s string, fallback float64) (string, float64, error) {
	text, rawMinutes, found := strings.Cut(s, "|")
	text = strings.TrimSpace(text)
	if !found {
		return text, fallback, nil
	}
	minutes, err := strconv.ParseFloat(strings.TrimSpace(rawMinutes), 64)
	if err != nil || minutes < 0 {
		return "", 0, errors.Wrap(ErrOutline, fmt.Sprintf("invalid duration %q", rawMinutes))
	}
	return text, minutes, nil
}

func findQuestion(doc questionnaire.Document, qid string) (questionnaire.Question, bool) {
	for _, session := range doc.Sessions {
		if q, ok := session.Question(qid); ok {
			return q, true
		}
	}
	return questionnaire.Question{}, false
}
