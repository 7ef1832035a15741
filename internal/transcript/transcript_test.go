package transcript_test

import (
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/badgerinator/businessProcessAnalysis/internal/transcript"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var (
	started  = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	finished = time.Date(2024, 3, 1, 9, 40, 0, 0, time.UTC)
	exported = time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)
)

func seedQuestionnaire(t *testing.T) models.Questionnaire {
	t.Helper()
	q, err := questionnaire.Load(questionnaire.Seed(), started)
	require.NoError(t, err)
	return q
}

// roundTrip returns the transcript the way a consumer of the file sees it.
func roundTrip(t *testing.T, doc map[string]any) map[string]any {
	t.Helper()
	raw, err := transcript.Marshal(doc)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func sessionByID(t *testing.T, doc map[string]any, id string) map[string]any {
	t.Helper()
	for _, s := range doc["sessions"].([]any) {
		session := s.(map[string]any)
		if session["session_id"] == id {
			return session
		}
	}
	t.Fatalf("session %s not found", id)
	return nil
}

func TestBuild_UntouchedSession(t *testing.T) {
	t.Parallel()
	q := seedQuestionnaire(t)
	iv := models.Interview{
		ID:        "iv-1",
		Candidate: models.Candidate{Name: "Ada"},
		StartedAt: started,
		Sessions:  map[string]*models.SessionData{},
	}

	doc, err := transcript.Build(q, iv, exported)
	require.NoError(t, err)
	out := roundTrip(t, doc)

	for _, id := range []string{"intro", "experience", "closing"} {
		session := sessionByID(t, out, id)
		require.InDelta(t, 0.0, session["timeSpent"], 0)
		for _, rawQuestion := range session["questions"].([]any) {
			resp := rawQuestion.(map[string]any)["response"].(map[string]any)
			require.Nil(t, resp["answer"])
			require.Nil(t, resp["notes"])
			require.Nil(t, resp["lastUpdated"])
			require.InDelta(t, 0.0, resp["timeSpent"], 0)
		}
	}
	require.Nil(t, out["review"])

	metadata := out["metadata"].(map[string]any)
	require.Equal(t, "Ada", metadata["candidateName"])
	require.Nil(t, metadata["candidateTitle"])
	require.Nil(t, metadata["finishedAt"])
	require.Equal(t, "2024-03-01T09:00:00.000Z", metadata["startedAt"])
	require.Equal(t, "2024-03-01T14:05:09.000Z", metadata["exportedAt"])
}

func TestBuild_WithResponsesAndReview(t *testing.T) {
	t.Parallel()
	q := seedQuestionnaire(t)
	updated := started.Add(5 * time.Minute)
	iv := models.Interview{
		ID:         "iv-2",
		Candidate:  models.Candidate{Name: "Grace", Title: "Engineer", Dept: "Platform"},
		StartedAt:  started,
		FinishedAt: &finished,
		Review: &models.Review{
			Strengths: []string{"clear"},
			NextSteps: "offer",
			Rating:    models.Rating{Technical: 4, Overall: 5},
		},
		Sessions: map[string]*models.SessionData{
			"intro": {
				ActualMs: 420000,
				Questions: map[string]*models.QuestionData{
					"intro-background": {Answer: "Compilers", Notes: "strong", ElapsedMs: 300000, LastUpdated: &updated},
					"intro-motivation": {Answer: "", ElapsedMs: 120000},
				},
			},
		},
	}

	doc, err := transcript.Build(q, iv, exported)
	require.NoError(t, err)
	out := roundTrip(t, doc)

	intro := sessionByID(t, out, "intro")
	require.InDelta(t, 420000.0, intro["timeSpent"], 0)
	// Fields of the source document survive.
	require.Equal(t, "Introduction", intro["title"])
	require.InDelta(t, 10.0, intro["planned_duration_min"], 0)

	questions := intro["questions"].([]any)
	background := questions[0].(map[string]any)
	require.Equal(t, "intro-background", background["qid"])
	require.Equal(t, "Let the candidate summarize their career so far.", background["desc"])
	resp := background["response"].(map[string]any)
	require.Equal(t, "Compilers", resp["answer"])
	require.Equal(t, "strong", resp["notes"])
	require.InDelta(t, 300000.0, resp["timeSpent"], 0)
	require.Equal(t, "2024-03-01T09:05:00.000Z", resp["lastUpdated"])

	motivation := questions[1].(map[string]any)["response"].(map[string]any)
	require.Nil(t, motivation["answer"], "empty answers export as null")
	require.InDelta(t, 120000.0, motivation["timeSpent"], 0)

	review := out["review"].(map[string]any)
	require.Equal(t, "offer", review["nextSteps"])
	require.InDelta(t, 5.0, review["rating"].(map[string]any)["overall"], 0)

	metadata := out["metadata"].(map[string]any)
	require.Equal(t, "Platform", metadata["candidateDept"])
	require.Equal(t, "2024-03-01T09:40:00.000Z", metadata["finishedAt"])
}

func TestBuild_DoesNotTouchStoredDocument(t *testing.T) {
	t.Parallel()
	q := seedQuestionnaire(t)
	before := append([]byte(nil), q.Document...)

	doc, err := transcript.Build(q, models.Interview{ID: "iv"}, exported)
	require.NoError(t, err)
	doc["analysis_name"] = "changed"
	sessions := doc["sessions"].([]any)
	sessions[0].(map[string]any)["title"] = "changed"

	require.Equal(t, before, []byte(q.Document))
	again, err := transcript.Build(q, models.Interview{ID: "iv"}, exported)
	require.NoError(t, err)
	require.Equal(t, "HR Interview", again["analysis_name"])
}

func TestBuild_SessionWithoutQuestions(t *testing.T) {
	t.Parallel()
	q := models.Questionnaire{Document: []byte(
		`{"analysis_name":"a","version":"1","sessions":[{"session_id":"s","title":"t","planned_duration_min":1}]}`)}
	doc, err := transcript.Build(q, models.Interview{}, exported)
	require.NoError(t, err)
	out := roundTrip(t, doc)
	require.Empty(t, sessionByID(t, out, "s")["questions"])
}

func TestBuild_MalformedDocument(t *testing.T) {
	t.Parallel()
	_, err := transcript.Build(models.Questionnaire{Document: []byte(`not json`)}, models.Interview{}, exported)
	require.ErrorIs(t, err, transcript.ErrMalformedDocument)

	_, err = transcript.Build(models.Questionnaire{Document: []byte(`{"sessions":[1]}`)}, models.Interview{}, exported)
	require.ErrorIs(t, err, transcript.ErrMalformedDocument)
}

func TestExportAndWrite(t *testing.T) {
	t.Parallel()
	q := seedQuestionnaire(t)
	name, data, err := transcript.Export(q, models.Interview{ID: "iv"}, exported)
	require.NoError(t, err)
	require.Equal(t, "transcript_2024-03-01_14-05-09.json", name)

	dir := t.TempDir()
	path, err := transcript.Write(dir, name, data)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, name), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file is cleaned up")

	_, err = transcript.Write(filepath.Join(dir, "missing"), name, data)
	require.Error(t, err)
}
