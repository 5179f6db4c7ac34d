package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulscript/persona-api/internal/app/parse"
	"github.com/soulscript/persona-api/internal/domain"
)

func TestEmotionScoresCompleteSet(t *testing.T) {
	scores, fail := parse.EmotionScores(`{"Joy": 0.5, "Sadness": 0.3}`)

	require.Nil(t, fail)
	assert.Len(t, scores, len(domain.Emotions))
	assert.Equal(t, 0.5, scores[domain.EmotionJoy])
	assert.Equal(t, 0.3, scores[domain.EmotionSadness])
	assert.Equal(t, 0.0, scores[domain.EmotionAnger])
}

func TestEmotionScoresDropsOutOfRange(t *testing.T) {
	scores, fail := parse.EmotionScores(`{"Joy": 1.5, "Anger": -0.2, "Fear": 0.9}`)

	require.Nil(t, fail)
	assert.Equal(t, 0.0, scores[domain.EmotionJoy])
	assert.Equal(t, 0.0, scores[domain.EmotionAnger])
	assert.Equal(t, 0.9, scores[domain.EmotionFear])
}

func TestEmotionScoresDropsNonNumericAndUnknown(t *testing.T) {
	scores, fail := parse.EmotionScores(`{"Joy": "high", "Euphoria": 0.8, "Surprise": 0.4}`)

	require.Nil(t, fail)
	assert.Equal(t, 0.0, scores[domain.EmotionJoy])
	assert.Equal(t, 0.4, scores[domain.EmotionSurprise])
	assert.NotContains(t, scores, domain.EmotionLabel("Euphoria"))
}

func TestEmotionScoresFencedPayload(t *testing.T) {
	scores, fail := parse.EmotionScores("```json\n{\"Neutral\": 0.7}\n```")

	require.Nil(t, fail)
	assert.Equal(t, 0.7, scores[domain.EmotionNeutral])
}

func TestEmotionScoresFullFailureIsAllZero(t *testing.T) {
	raw := "I cannot quantify that entry."
	scores, fail := parse.EmotionScores(raw)

	require.NotNil(t, fail)
	assert.Equal(t, raw, fail.Raw)
	for _, label := range domain.Emotions {
		assert.Equal(t, 0.0, scores[label])
	}
}
