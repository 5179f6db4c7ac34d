package parse

import (
	"encoding/json"

	"github.com/soulscript/persona-api/internal/domain"
)

// ZeroEmotions returns the fixed emotion set with every score at zero.
func ZeroEmotions() map[domain.EmotionLabel]float64 {
	out := make(map[domain.EmotionLabel]float64, len(domain.Emotions))
	for _, label := range domain.Emotions {
		out[label] = 0
	}
	return out
}

// EmotionScores decodes the emotion stage output into the fixed label set.
// Unknown labels, non-numeric values, and values outside [0,1] are dropped;
// labels the model omitted stay at zero. A fully failed parse yields the
// all-zero set plus a Failure sentinel.
func EmotionScores(raw string) (map[domain.EmotionLabel]float64, *Failure) {
	scores := ZeroEmotions()

	obj, fail := JSONObject(raw)
	if fail != nil {
		return scores, fail
	}

	for _, label := range domain.Emotions {
		v, ok := obj[string(label)]
		if !ok {
			continue
		}
		f, ok := asFloat(v)
		if !ok || f < 0 || f > 1 {
			continue
		}
		scores[label] = f
	}

	return scores, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
