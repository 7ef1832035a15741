package questionnaire_test

import (
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

const minimalDoc = `{
  "analysis_name": "Backend",
  "version": "2",
  "sessions": [
    {"session_id": "s1", "title": "Warmup", "planned_duration_min": 5,
     "questions": [{"qid": "q1", "text": "Hello?", "expected_duration_min": 1}]}
  ]
}`

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{name: "valid", doc: minimalDoc},
		{name: "seed", doc: string(questionnaire.Seed())},
		{name: "sessions without questions", doc: `{"analysis_name":"a","version":"1","sessions":[
			{"session_id":"s","title":"t","planned_duration_min":1}]}`},
		{name: "missing sessions", doc: `{"analysis_name":"a","version":"1"}`, wantFields: []string{"(root)"}},
		{name: "wrong type", doc: `{"analysis_name":"a","version":1,"sessions":[]}`, wantFields: []string{"version"}},
		{
			name: "question without qid",
			doc: `{"analysis_name":"a","version":"1","sessions":[{"session_id":"s","title":"t",
				"planned_duration_min":1,"questions":[{"text":"x","expected_duration_min":1}]}]}`,
			wantFields: []string{"sessions.0.questions.0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := questionnaire.Validate([]byte(tt.doc))
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			var ve *questionnaire.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			require.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestHash_IgnoresKeyOrderAndWhitespace(t *testing.T) {
	t.Parallel()
	a, err := questionnaire.Hash([]byte(`{"version":"1","analysis_name":"x","sessions":[]}`))
	require.NoError(t, err)
	b, err := questionnaire.Hash([]byte("{\n  \"analysis_name\": \"x\",\n  \"sessions\": [],\n  \"version\": \"1\"\n}"))
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	c, err := questionnaire.Hash([]byte(`{"version":"2","analysis_name":"x","sessions":[]}`))
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestParse_YAML(t *testing.T) {
	t.Parallel()
	yamlDoc := `
analysis_name: Backend
version: "2"
sessions:
  - session_id: s1
    title: Warmup
    planned_duration_min: 5
    questions:
      - qid: q1
        text: Hello?
        expected_duration_min: 1
`
	fromYAML, err := questionnaire.Parse([]byte(yamlDoc))
	require.NoError(t, err)
	require.JSONEq(t, minimalDoc, string(fromYAML))

	yamlHash, err := questionnaire.Hash(fromYAML)
	require.NoError(t, err)
	jsonHash, err := questionnaire.Hash([]byte(minimalDoc))
	require.NoError(t, err)
	require.Equal(t, jsonHash, yamlHash)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "   ", `{"analysis_name":`, "key: [unclosed"} {
		_, err := questionnaire.Parse([]byte(raw))
		require.ErrorIs(t, err, questionnaire.ErrMalformed, "input %q", raw)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	q, err := questionnaire.Load([]byte(minimalDoc), now)
	require.NoError(t, err)
	require.Equal(t, "Backend", q.Name)
	require.Equal(t, "2", q.Version)
	require.Equal(t, now, q.CreatedAt)
	require.JSONEq(t, minimalDoc, string(q.Document))

	wantHash, err := questionnaire.Hash([]byte(minimalDoc))
	require.NoError(t, err)
	require.Equal(t, wantHash, q.Hash)

	_, err = questionnaire.Load([]byte(`{"analysis_name":"a"}`), now)
	var ve *questionnaire.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestDocument(t *testing.T) {
	t.Parallel()
	doc, err := questionnaire.Decode(questionnaire.Seed())
	require.NoError(t, err)
	require.InDelta(t, 40.0, doc.TotalDuration(), 0.001)
	require.Equal(t, 7, doc.QuestionCount())

	session, ok := doc.Session("experience")
	require.True(t, ok)
	question, ok := session.Question("exp-project")
	require.True(t, ok)
	require.InDelta(t, 8.0, question.ExpectedDurationMin, 0.001)

	_, ok = doc.Session("missing")
	require.False(t, ok)
	_, ok = session.Question("missing")
	require.False(t, ok)
}

func TestBuilder(t *testing.T) {
	t.Parallel()
	b := questionnaire.NewBuilder("Platform", "0.1")
	sessionID := b.AddSession("", 0)
	qid, err := b.AddQuestion(sessionID, "What is a goroutine?", 0)
	require.NoError(t, err)

	seed, err := questionnaire.Decode(questionnaire.Seed())
	require.NoError(t, err)
	imported := seed.Sessions[0].Questions[0]
	importedID, err := b.ImportQuestion(sessionID, imported)
	require.NoError(t, err)
	require.NotEqual(t, imported.QID, importedID)
	require.NotEqual(t, qid, importedID)

	_, err = b.AddQuestion("nope", "x", 1)
	require.ErrorIs(t, err, questionnaire.ErrUnknownSession)

	raw, err := b.Build()
	require.NoError(t, err)

	var doc questionnaire.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Sessions, 1)
	require.Equal(t, "New Session", doc.Sessions[0].Title)
	require.InDelta(t, float64(questionnaire.DefaultSessionMin), doc.Sessions[0].PlannedDurationMin, 0.001)
	require.Len(t, doc.Sessions[0].Questions, 2)
	require.InDelta(t, float64(questionnaire.DefaultQuestionMin), doc.Sessions[0].Questions[0].ExpectedDurationMin, 0.001)
	require.Equal(t, imported.Text, doc.Sessions[0].Questions[1].Text)
	require.Equal(t, imported.Desc, doc.Sessions[0].Questions[1].Desc)
}
