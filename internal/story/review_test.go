package story

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storysmith/internal/core"
	"storysmith/internal/llm"
	"storysmith/internal/quality"
)

func reviewedStory() core.Story {
	return core.NewStory(oauthForm(), "## Implement OAuth\n\n### Contexto\n\nLogin social.", time.Now())
}

func TestReview_UsesModelScore(t *testing.T) {
	reply := `{"independent":{"score":90},"negotiable":{"score":80},"valuable":{"score":70},
"estimable":{"score":60},"small":{"score":100},"testable":{"score":80},"suggestions":["Detalhe o fluxo de erro"]}`
	gen := &fakeGenerator{replies: []string{reply}}

	score, err := NewReviewer(gen, nil).Review(context.Background(), reviewedStory())
	require.NoError(t, err)

	assert.Equal(t, quality.SourceAI, score.Source)
	assert.Equal(t, 80, score.Overall)
	assert.Equal(t, []string{"Detalhe o fluxo de erro"}, score.Suggestions)
	assert.Contains(t, gen.prompts[0], "Login social.")
}

func TestReview_FallsBackToHeuristic(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Não consigo avaliar."}}
	s := reviewedStory()

	score, err := NewReviewer(gen, nil).Review(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, quality.SourceHeuristic, score.Source)
	assert.Equal(t, quality.NewEvaluator().Evaluate(s), score)
}

func TestReview_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("429 rate exceeded")}

	score, err := NewReviewer(gen, nil).Review(context.Background(), reviewedStory())
	assert.Nil(t, score)
	assert.Equal(t, llm.KindGeneric, llm.KindOf(err))
}

func TestImprovements(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`[{"type":"criterio","severity":"alta","problem":"p","suggestion":"s","applicable":true}]`}}

	items, err := NewReviewer(gen, nil).Improvements(context.Background(), reviewedStory())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "alta", items[0].Severity)

	gen = &fakeGenerator{replies: []string{"sem sugestões"}}
	_, err = NewReviewer(gen, nil).Improvements(context.Background(), reviewedStory())
	assert.ErrorIs(t, err, quality.ErrMalformedReview)
}
