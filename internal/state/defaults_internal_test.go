package state

import (
	"context"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/badgerinator/businessProcessAnalysis/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
	"time"
)

func TestStore_DecodesQuestionnaireOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New(ctx, testhelpers.NewLogger(io.Discard))
	q, err := s.AddQuestionnaire(ctx, questionnaire.Seed())
	require.NoError(t, err)
	iv, err := s.CreateInterview(ctx, q.Hash, models.Candidate{Name: "Ada"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateQuestionTime(ctx, iv.ID, "intro", "intro-background", time.Second))
	require.Len(t, s.documents, 1)

	// Later lookups must not decode the stored bytes again.
	s.mu.Lock()
	broken := s.state.Questionnaires[q.Hash]
	broken.Document = []byte("{")
	s.state.Questionnaires[q.Hash] = broken
	s.mu.Unlock()

	require.NoError(t, s.UpdateNotes(ctx, iv.ID, "experience", "exp-project", "mentions ownership"))
	got, err := s.Interview(iv.ID)
	require.NoError(t, err)
	require.InDelta(t, 10.0, got.Sessions["intro"].PlannedMin, 0.001)
	require.InDelta(t, 5.0, got.Sessions["intro"].Questions["intro-background"].PlannedMin, 0.001)
	require.InDelta(t, 20.0, got.Sessions["experience"].PlannedMin, 0.001)
	require.InDelta(t, 8.0, got.Sessions["experience"].Questions["exp-project"].PlannedMin, 0.001)
}

func TestStore_UnknownQuestionnaireIsNotCached(t *testing.T) {
	t.Parallel()
	s := New(context.Background(), testhelpers.NewLogger(io.Discard))
	st := newState()

	_, ok := s.document(&st, "missing")
	require.False(t, ok)
	require.Empty(t, s.documents)
}
