package domain

import "time"

type UserID string
type RecordID string

type Timestamp = time.Time

// EmotionLabel is one of the fixed emotion categories the emotion stage
// quantifies. The set is closed; model output for labels outside it is ignored.
type EmotionLabel string

const (
	EmotionJoy      EmotionLabel = "Joy"
	EmotionSadness  EmotionLabel = "Sadness"
	EmotionAnger    EmotionLabel = "Anger"
	EmotionFear     EmotionLabel = "Fear"
	EmotionSurprise EmotionLabel = "Surprise"
	EmotionDisgust  EmotionLabel = "Disgust"
	EmotionNeutral  EmotionLabel = "Neutral"
)

// Emotions lists every label in display order.
var Emotions = []EmotionLabel{
	EmotionJoy,
	EmotionSadness,
	EmotionAnger,
	EmotionFear,
	EmotionSurprise,
	EmotionDisgust,
	EmotionNeutral,
}
