// Package transcript assembles the exported JSON document of an interview.
package transcript

import (
	"bytes"
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// isoFormat matches JavaScript's Date.toISOString so that transcripts are stable across producers.
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

var ErrMalformedDocument = errors.NewSentinel("questionnaire document cannot be exported")

// Build combines the questionnaire document with the interview's responses and review.
//
// The document is decoded afresh, so the result shares nothing with the stored questionnaire. Sessions and questions
// the interview never touched get empty responses instead of failing the export.
func Build(q models.Questionnaire, iv models.Interview, exportedAt time.Time) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(q.Document))
	// Numbers keep their original spelling.
	decoder.UseNumber()
	var doc map[string]any
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Wrap(ErrMalformedDocument, err.Error(), slog.String("hash", q.Hash))
	}

	doc["metadata"] = map[string]any{
		"candidateName":  iv.Candidate.Name,
		"candidateTitle": nullIfEmpty(iv.Candidate.Title),
		"candidateDept":  nullIfEmpty(iv.Candidate.Dept),
		"startedAt":      iso(&iv.StartedAt),
		"finishedAt":     iso(iv.FinishedAt),
		"exportedAt":     iso(&exportedAt),
	}

	var review any
	if iv.Review != nil {
		review = iv.Review.Clone()
	}
	doc["review"] = review

	rawSessions, _ := doc["sessions"].([]any)
	for i, rawSession := range rawSessions {
		session, ok := rawSession.(map[string]any)
		if !ok {
			return nil, errors.Wrap(ErrMalformedDocument, "session is not an object", slog.Int("index", i))
		}
		sessionID, _ := session["session_id"].(string)
		data := iv.Sessions[sessionID]

		rawQuestions, _ := session["questions"].([]any)
		questions := make([]any, 0, len(rawQuestions))
		for j, rawQuestion := range rawQuestions {
			question, isObject := rawQuestion.(map[string]any)
			if !isObject {
				return nil, errors.Wrap(ErrMalformedDocument, "question is not an object",
					slog.String("session_id", sessionID), slog.Int("index", j))
			}
			qid, _ := question["qid"].(string)
			question["response"] = response(data, qid)
			questions = append(questions, question)
		}
		session["questions"] = questions

		var timeSpent int64
		if data != nil {
			timeSpent = data.ActualMs
		}
		session["timeSpent"] = timeSpent
	}

	return doc, nil
}

func response(session *models.SessionData, qid string) map[string]any {
	out := map[string]any{
		"answer":      nil,
		"notes":       nil,
		"timeSpent":   int64(0),
		"lastUpdated": nil,
	}
	if session == nil {
		return out
	}
	data := session.Questions[qid]
	if data == nil {
		return out
	}
	clone := data.Clone()
	if answer, isString := clone.Answer.(string); !isString || answer != "" {
		out["answer"] = clone.Answer
	}
	out["notes"] = nullIfEmpty(clone.Notes)
	out["timeSpent"] = clone.ElapsedMs
	out["lastUpdated"] = iso(clone.LastUpdated)
	return out
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func iso(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(isoFormat)
}

// Marshal encodes the transcript with two space indentation.
func Marshal(doc map[string]any) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal transcript")
	}
	return out, nil
}

// Filename names the transcript after the export time, e.g. transcript_2024-03-01_14-05-09.json.
func Filename(exportedAt time.Time) string {
	return "transcript_" + exportedAt.Format("2006-01-02_15-04-05") + ".json"
}

// Export builds the transcript and renders it together with its file name.
func Export(q models.Questionnaire, iv models.Interview, exportedAt time.Time) (string, []byte, error) {
	doc, err := Build(q, iv, exportedAt)
	if err != nil {
		return "", nil, errors.Wrap(err, "build transcript", slog.String("interview_id", iv.ID))
	}
	data, err := Marshal(doc)
	if err != nil {
		return "", nil, err
	}
	return Filename(exportedAt), data, nil
}

// Write stores data as dir/name. The content goes to a temporary file first so that an aborted export never leaves a
// partial transcript behind.
func Write(dir, name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, ".transcript-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "create temporary file", slog.String("dir", dir))
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", errors.Wrap(err, "write transcript")
	}
	if err = tmp.Close(); err != nil {
		return "", errors.Wrap(err, "close transcript")
	}

	path := filepath.Join(dir, name)
	if err = os.Rename(tmpName, path); err != nil {
		return "", errors.Wrap(err, "rename transcript", slog.String("path", path))
	}
	return path, nil
}
