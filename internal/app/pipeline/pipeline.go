// Package pipeline sequences the LLM-backed stages that turn a user's raw
// records into structured persona data and per-entry journal analyses.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soulscript/persona-api/internal/app/parse"
	"github.com/soulscript/persona-api/internal/app/prompt"
	"github.com/soulscript/persona-api/internal/domain"
	"github.com/soulscript/persona-api/internal/observability"
)

// Orchestrator owns all in-flight records and stage outputs during a run.
type Orchestrator struct {
	records      domain.RecordStore
	llm          domain.LLMClient
	journalLimit int
}

func New(records domain.RecordStore, llm domain.LLMClient, journalLimit int) *Orchestrator {
	if journalLimit <= 0 {
		journalLimit = 5
	}
	return &Orchestrator{
		records:      records,
		llm:          llm,
		journalLimit: journalLimit,
	}
}

// PersonaCandidate is the merged but not yet persisted output of a persona
// build. The aggregator stamps and stores it.
type PersonaCandidate struct {
	Info  map[string][]domain.InfoField
	Graph map[string][]domain.ScoredEntry

	Degraded bool
	RawInfo  string
	RawGraph string
}

// stageInput is the serialized payload both persona stages receive.
type stageInput struct {
	ChatHistory    []domain.Record `json:"chat_history"`
	JournalEntries []domain.Record `json:"journal_entries"`
}

// BuildPersona fetches the user's records and runs the info-extraction and
// graph-scoring stages concurrently. Both stages depend only on the fetched
// records, so their completion order cannot change the merged result. A
// transport failure in either stage aborts the run; an unparseable stage
// output degrades the candidate instead.
func (o *Orchestrator) BuildPersona(ctx context.Context, userID domain.UserID) (*PersonaCandidate, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)
	start := time.Now()

	chat, err := o.records.FetchChatRecords(ctx, userID)
	if err != nil {
		return nil, &domain.PipelineError{Stage: "fetch", Err: err}
	}
	journal, err := o.records.FetchJournalRecords(ctx, userID, o.journalLimit)
	if err != nil {
		return nil, &domain.PipelineError{Stage: "fetch", Err: err}
	}
	log.Info("records fetched", "chat_count", len(chat), "journal_count", len(journal))

	input := stageInput{ChatHistory: chat, JournalEntries: journal}

	var (
		info     map[string][]domain.InfoField
		infoFail *parse.Failure

		graph     map[string][]domain.ScoredEntry
		graphFail *parse.Failure
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := o.generate(gctx, prompt.StageExtraction, input)
		if err != nil {
			return err
		}
		var decoded map[string][]domain.InfoField
		if fail := parse.Decode(raw, &decoded); fail != nil {
			infoFail = fail
			return nil
		}
		info = decoded
		return nil
	})

	g.Go(func() error {
		raw, err := o.generate(gctx, prompt.StageGraph, input)
		if err != nil {
			return err
		}
		decoded, fail := decodeGraph(raw)
		if fail != nil {
			graphFail = fail
			return nil
		}
		graph = decoded
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidate := &PersonaCandidate{Info: info, Graph: graph}
	if infoFail != nil {
		candidate.Degraded = true
		candidate.RawInfo = infoFail.Raw
		log.Warn("info extraction output unparseable, carrying raw text")
	}
	if graphFail != nil {
		candidate.Degraded = true
		candidate.RawGraph = graphFail.Raw
		log.Warn("graph scoring output unparseable, carrying raw text")
	}

	log.Info("persona build complete",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"degraded", candidate.Degraded,
	)
	return candidate, nil
}

// ExtractChatProfile runs the info-extraction stage over the user's chat
// history alone, for the chat summary report. When the output cannot be
// parsed the structured map is nil and the raw model text is returned
// instead.
func (o *Orchestrator) ExtractChatProfile(ctx context.Context, userID domain.UserID) (map[string][]domain.InfoField, string, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	chat, err := o.records.FetchChatRecords(ctx, userID)
	if err != nil {
		return nil, "", &domain.PipelineError{Stage: "fetch", Err: err}
	}
	log.Info("chat records fetched", "count", len(chat))

	raw, err := o.generate(ctx, prompt.StageExtraction, stageInput{ChatHistory: chat})
	if err != nil {
		return nil, "", err
	}

	var info map[string][]domain.InfoField
	if fail := parse.Decode(raw, &info); fail != nil {
		log.Warn("chat extraction output unparseable, carrying raw text")
		return nil, fail.Raw, nil
	}
	return info, "", nil
}

// AnalyzeJournal runs the per-record sub-pipeline: narrative analysis, then
// summary, then emotion scores, for up to limit entries. Results are ordered
// timestamp-descending. An unparseable emotion payload zeroes that entry's
// scores and flags it degraded; a transport failure aborts the run.
func (o *Orchestrator) AnalyzeJournal(ctx context.Context, userID domain.UserID, limit int) ([]domain.AnalysisResult, error) {
	if limit <= 0 {
		limit = o.journalLimit
	}

	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	records, err := o.records.FetchJournalRecords(ctx, userID, limit)
	if err != nil {
		return nil, &domain.PipelineError{Stage: "fetch", Err: err}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no journal entries for user %s: %w", userID, domain.ErrNotFound)
	}

	// stores return newest-first already; restore the order in case one
	// does not
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	results := make([]domain.AnalysisResult, 0, len(records))
	for _, rec := range records {
		narrative, err := o.generate(ctx, prompt.StageAnalysis, prompt.FormatRecord(rec))
		if err != nil {
			return nil, err
		}

		summary, err := o.generate(ctx, prompt.StageSummary, narrative)
		if err != nil {
			return nil, err
		}

		emotionRaw, err := o.generate(ctx, prompt.StageEmotion, rec.Content)
		if err != nil {
			return nil, err
		}
		scores, fail := parse.EmotionScores(emotionRaw)

		result := domain.AnalysisResult{
			RecordID:  rec.ID,
			Timestamp: rec.Timestamp,
			Title:     rec.Title,
			Narrative: parse.Clean(narrative),
			Summary:   parse.Clean(summary),
			Emotions:  scores,
		}
		if fail != nil {
			result.Degraded = true
			result.RawEmotion = fail.Raw
			log.Warn("emotion output unparseable", "record_id", rec.ID)
		}
		results = append(results, result)
	}

	log.Info("journal analysis complete", "entries", len(results))
	return results, nil
}

// Summarize runs the aggregation stage over per-entry summaries, producing
// the executive summary used by journal reports.
func (o *Orchestrator) Summarize(ctx context.Context, results []domain.AnalysisResult) (string, error) {
	summaries := make([]string, len(results))
	for i, r := range results {
		summaries[i] = r.Summary
	}

	text, err := o.generate(ctx, prompt.StageAggregation, map[string][]string{"insights": summaries})
	if err != nil {
		return "", err
	}
	return parse.Clean(text), nil
}

// generate builds the stage prompt and performs one model call, wrapping any
// failure with the stage it happened in.
func (o *Orchestrator) generate(ctx context.Context, stage prompt.Stage, input any) (string, error) {
	p, err := prompt.Build(stage, input)
	if err != nil {
		return "", &domain.PipelineError{Stage: string(stage), Err: err}
	}

	raw, err := o.llm.Generate(ctx, p.System, p.User)
	if err != nil {
		return "", &domain.PipelineError{Stage: string(stage), Err: err}
	}
	return raw, nil
}

// decodeGraph decodes the graph stage output, rounding fractional scores and
// clamping them to the 0-10 scale, and stamps each entry with its category.
func decodeGraph(raw string) (map[string][]domain.ScoredEntry, *parse.Failure) {
	var decoded map[string][]struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}
	if fail := parse.Decode(raw, &decoded); fail != nil {
		return nil, fail
	}

	out := make(map[string][]domain.ScoredEntry, len(decoded))
	for category, entries := range decoded {
		for _, e := range entries {
			score := int(math.Round(e.Score))
			if score < 0 {
				score = 0
			}
			if score > 10 {
				score = 10
			}
			out[category] = append(out[category], domain.ScoredEntry{
				Name:     e.Name,
				Score:    score,
				Category: category,
			})
		}
	}
	return out, nil
}
