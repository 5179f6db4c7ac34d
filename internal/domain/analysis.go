package domain

import "time"

// AnalysisResult holds the per-record output of the journal sub-pipeline:
// a narrative analysis, a condensed summary, and quantified emotion scores.
type AnalysisResult struct {
	RecordID  RecordID
	Timestamp time.Time
	Title     string

	// Narrative is the full psychological analysis text.
	Narrative string
	// Summary is the 1-2 key takeaways distilled from Narrative.
	Summary string

	// Emotions always contains every label in Emotions with a score in [0,1].
	Emotions map[EmotionLabel]float64

	// Degraded marks results whose emotion output could not be decoded.
	// RawEmotion keeps the model text for diagnostics in that case.
	Degraded   bool
	RawEmotion string
}
