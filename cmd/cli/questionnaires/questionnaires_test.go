package questionnaires

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/cmd/cli/storage"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/badgerinator/businessProcessAnalysis/internal/repositories"
	"github.com/badgerinator/businessProcessAnalysis/internal/sqlite"
	"github.com/badgerinator/businessProcessAnalysis/internal/testhelpers"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func seedLibrary(t *testing.T) questionnaire.Document {
	t.Helper()
	doc, err := questionnaire.Decode(questionnaire.Seed())
	require.NoError(t, err)
	return doc
}

func TestParseOutline(t *testing.T) {
	t.Parallel()
	outline := `
// screening call
# Introduction | 10
- Walk me through your background. | 5
- Why this role?

# Wrap up
+ closing-questions
`
	b := questionnaire.NewBuilder("Screening", "1.0.0")
	require.NoError(t, parseOutline(strings.NewReader(outline), b, seedLibrary(t)))
	raw, err := b.Build()
	require.NoError(t, err)
	doc, err := questionnaire.Decode(raw)
	require.NoError(t, err)

	require.Len(t, doc.Sessions, 2)
	intro := doc.Sessions[0]
	require.Equal(t, "Introduction", intro.Title)
	require.InDelta(t, 10.0, intro.PlannedDurationMin, 0.001)
	require.Len(t, intro.Questions, 2)
	require.InDelta(t, 5.0, intro.Questions[0].ExpectedDurationMin, 0.001)
	require.InDelta(t, float64(questionnaire.DefaultQuestionMin), intro.Questions[1].ExpectedDurationMin, 0.001)

	wrapUp := doc.Sessions[1]
	require.InDelta(t, float64(questionnaire.DefaultSessionMin), wrapUp.PlannedDurationMin, 0.001)
	require.Len(t, wrapUp.Questions, 1)
	require.NotEqual(t, "closing-questions", wrapUp.Questions[0].QID)
	require.Equal(t, seedLibrary(t).Sessions[2].Questions[1].Text, wrapUp.Questions[0].Text)
}

func TestParseOutline_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		outline string
	}{
		{name: "empty", outline: "\n\n"},
		{name: "question first", outline: "- orphan\n# Session"},
		{name: "bad duration", outline: "# Session | soon"},
		{name: "negative duration", outline: "# Session\n- q | -3"},
		{name: "empty question", outline: "# Session\n- | 3"},
		{name: "unknown library question", outline: "# Session\n+ missing"},
		{name: "unknown marker", outline: "# Session\n* q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := questionnaire.NewBuilder("x", "1")
			err := parseOutline(strings.NewReader(tt.outline), b, seedLibrary(t))
			require.ErrorIs(t, err, ErrOutline)
		})
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := &cobra.Command{Use: "interviewkit", SilenceUsage: true, SilenceErrors: true}
	root.AddGroup(Group)
	root.AddCommand(Validate, Build, List)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, questionnaire.Seed(), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("analysis_name: x\nversion: \"1\"\n"), 0o600))

	stdout, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	want, err := questionnaire.Hash(questionnaire.Seed())
	require.NoError(t, err)
	require.Equal(t, want, strings.TrimSpace(stdout))

	_, stderr, err := execute(t, "validate", bad)
	var ve *questionnaire.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, stderr, "sessions")
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	outline := filepath.Join(dir, "outline.txt")
	require.NoError(t, os.WriteFile(outline, []byte("# Intro | 15\n- Hello? | 1\n+ exp-project\n"), 0o600))
	library := filepath.Join(dir, "library.json")
	require.NoError(t, os.WriteFile(library, questionnaire.Seed(), 0o600))
	out := filepath.Join(dir, "built.json")

	_, _, err := execute(t, "build", outline, "--name", "Quick", "--library", library, "--out", out)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, questionnaire.Validate(raw))
	var doc questionnaire.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, "Quick", doc.AnalysisName)
	require.Equal(t, "1.0.0", doc.Version)
	require.Len(t, doc.Sessions[0].Questions, 2)
	require.InDelta(t, 15.0, doc.TotalDuration(), 0.001)
}

func TestListCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.sqlite3")
	t.Setenv("INTERVIEWKIT_SQLITE_URL", dbPath)
	ctx := context.Background()

	store, closeStore, err := storage.Open(ctx, storage.Logger(io.Discard), os.LookupEnv)
	require.NoError(t, err)
	q, err := store.AddQuestionnaire(ctx, questionnaire.Seed())
	require.NoError(t, err)
	closeStore()

	stdout, _, err := execute(t, "questionnaires")
	require.NoError(t, err)
	require.Contains(t, stdout, q.Hash[:12]+"  ")
	require.NotContains(t, stdout, q.Hash)
	require.Contains(t, stdout, q.Name)
}

func TestListCommand_ShortHash(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.sqlite3")
	t.Setenv("INTERVIEWKIT_SQLITE_URL", dbPath)
	ctx := context.Background()

	// A hand edited snapshot can key a questionnaire by a hash shorter than the display width.
	logger := testhelpers.NewLogger(io.Discard)
	db, err := sqlite.NewDatabase(ctx, dbPath, logger)
	require.NoError(t, err)
	payload := fmt.Sprintf(`{"questionnaires":{"abc":{"hash":"abc","name":"Edited","version":"1",`+
		`"createdAt":"2024-01-01T00:00:00Z","json":%s}},"interviews":{},"currentInterviewId":null,"darkMode":false}`,
		questionnaire.Seed())
	snapshots := repositories.NewSnapshotRepository(db, logger)
	require.NoError(t, snapshots.Save(ctx, "interview-platform-storage", []byte(payload)))
	require.NoError(t, db.Close())

	stdout, _, err := execute(t, "questionnaires")
	require.NoError(t, err)
	require.Contains(t, stdout, "abc")
	require.Contains(t, stdout, "Edited")
}
