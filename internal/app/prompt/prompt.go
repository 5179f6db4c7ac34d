// Package prompt assembles the instruction text sent to the model for each
// pipeline stage. Templates are fixed per stage; serialized input data is
// appended verbatim, so building a prompt is deterministic for a given input.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soulscript/persona-api/internal/domain"
)

// Stage identifies one LLM-backed transformation step.
type Stage string

const (
	StageExtraction  Stage = "extraction"
	StageGraph       Stage = "graph"
	StageAnalysis    Stage = "analysis"
	StageSummary     Stage = "summary"
	StageEmotion     Stage = "emotion"
	StageAggregation Stage = "aggregation"
	StageChat        Stage = "chat"
)

// Prompt is the system instruction plus the user content for one model call.
type Prompt struct {
	System string
	User   string
}

const defaultSystem = "You are an expert psychologist analyzing therapy conversations and journal entries."

const emotionSystem = "You are an emotion analysis tool. Return ONLY valid JSON."

const chatSystem = `You are "SoulScript", an AI companion focused on mental well-being.

Your role:
- You listen with empathy and without judgment.
- You help the user clarify what they feel, what they need, and what they can do next.
- You are NOT a therapist, doctor, or emergency service and you do NOT give medical or psychiatric diagnoses.

Style:
- Answer in the SAME LANGUAGE as the user.
- Be concise and use simple, everyday language.
- Use the persona profile you are given to stay consistent with what the user has already shared; never recite the profile back to them.

Boundaries and safety:
- If the user mentions self-harm, suicide, or that they might hurt someone, encourage them to seek immediate help from local emergency services or a trusted person.
- Make it clear you cannot replace professional mental health care in crisis situations.`

const extractionTemplate = `# Role
You are an advanced data extraction system that processes therapy conversations and journal analyses into structured JSON.

# Task
1. Extract the essential details from the provided records.
2. Structure the output as a JSON object whose keys are section identifiers and whose values are lists of {"label": string, "value": string} fields. Use these sections where the data supports them:
   - personalInformation: name, age, gender, contact
   - employmentAndLifestyle: employment status, relationship status, daily routine
   - mentalHealthHistory: past diagnoses, previous treatments, family history
   - traumaHistory: significant life events, impact, coping mechanisms
   - behavioralPatterns: substance use, addiction or compulsive behaviors
   - supportSystem: social support, role of family and friends
   - Fold other relevant details (stressors, triggers, current emotional state, therapy goals) naturally into the closest section.
3. Mark missing or ambiguous fields as "unclear". If the user declined to share something, say so in the value.
4. Return clean, valid JSON and nothing else. Do not wrap the output in a code fence.`

const graphTemplate = `# Role
You are a clinical scoring system that quantifies a user's psychological profile from therapy conversations and journal analyses.

# Task
1. Identify the user's notable symptoms, stressors, and strengths.
2. Return a JSON object with the keys "symptoms", "stressors", and "strengths". Each value is a list of {"name": string, "score": integer} entries where score is the severity (or for strengths, the resource strength) on a 0-10 scale.
3. Only include entries the records actually support. Return valid JSON and nothing else, without a code fence.`

const analysisTemplate = `Analyze this journal entry as a psychologist. Focus on key insights and actionable takeaways.

Provide a concise yet comprehensive analysis covering:
1. Emotional state (primary and secondary emotions)
2. Cognitive patterns (positive/negative, rational/irrational)
3. Stress indicators and coping mechanisms
4. Notable behavioral patterns
5. Key concerns or growth opportunities
6. Specific recommendations for improvement

Format your response with clear bullet points for each category.`

const summaryTemplate = `Summarize this psychological analysis into 1-2 key actionable insights from the journal entry.

Focus on the most important takeaways that the journal writer should pay attention to.
Format as bullet points.`

const aggregationTemplate = `Create a well-structured executive summary from these per-entry insights.

Return markdown with exactly these sections:
### Key Patterns
### Emotional Trends
### Recommendations

Each section holds 2-3 bullet points. Do not wrap the output in a code fence.`

const chatTemplate = `Here is what you already know about this user, extracted from their history. Use it as background only.

Persona profile:`

// emotionTemplate is built at runtime so the label list always matches the
// fixed emotion set.
func emotionTemplate() string {
	labels := make([]string, len(domain.Emotions))
	for i, l := range domain.Emotions {
		labels[i] = string(l)
	}
	return fmt.Sprintf(`Analyze this journal entry and quantify the emotional content.

Return ONLY a JSON dictionary with values between 0 and 1 for these emotions: %s
Example: {"Joy": 0.5, "Sadness": 0.3}

Entry:`, strings.Join(labels, ", "))
}

// Build combines the stage template with the serialized input. Input data is
// never mutated; strings are appended verbatim, everything else is marshaled
// to indented JSON. A marshal failure surfaces as InputSerializationError.
func Build(stage Stage, input any) (Prompt, error) {
	data, err := serialize(input)
	if err != nil {
		return Prompt{}, &domain.InputSerializationError{Err: err}
	}

	system := defaultSystem
	var template string

	switch stage {
	case StageExtraction:
		template = extractionTemplate
	case StageGraph:
		template = graphTemplate
	case StageAnalysis:
		template = analysisTemplate
	case StageSummary:
		template = summaryTemplate
	case StageEmotion:
		system = emotionSystem
		template = emotionTemplate()
	case StageAggregation:
		template = aggregationTemplate
	case StageChat:
		system = chatSystem
		template = chatTemplate
	default:
		return Prompt{}, fmt.Errorf("unknown prompt stage %q", stage)
	}

	return Prompt{
		System: system,
		User:   template + "\n\nInput:\n" + data,
	}, nil
}

func serialize(input any) (string, error) {
	switch v := input.(type) {
	case string:
		return v, nil
	case json.RawMessage:
		return string(v), nil
	default:
		b, err := json.MarshalIndent(input, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// FormatRecord renders one record the way the analysis stage expects it.
func FormatRecord(r domain.Record) string {
	return fmt.Sprintf("Title: %s\nDate: %s\nContent: %s",
		r.Title, r.Timestamp.Format("2006-01-02"), r.Content)
}

// FormatRecords renders a record set as blank-line separated blocks, in the
// order given.
func FormatRecords(records []domain.Record) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = FormatRecord(r)
	}
	return strings.Join(blocks, "\n\n")
}
