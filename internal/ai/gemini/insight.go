package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Insight is the model's verdict on a candidate/role pairing.
type Insight struct {
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	Raw       string   `json:"-"`
}

// InsightWriter turns a candidate/role pair into a narrative explanation.
type InsightWriter struct {
	generator contentGenerator
	logger    *zap.Logger
}

// NewInsightWriter creates an InsightWriter backed by the given generator.
func NewInsightWriter(generator contentGenerator, logger *zap.Logger) *InsightWriter {
	return &InsightWriter{generator: generator, logger: logger}
}

const promptTemplate = `You are a recruiting analyst. Compare the candidate and the role below and respond with a single JSON object, no prose, shaped as:
{"summary": "<two sentences>", "strengths": ["..."], "gaps": ["..."]}

Candidate:
%s

Role:
%s

JSON response:`

// Explain asks the model why (or why not) the candidate fits the role.
func (w *InsightWriter) Explain(ctx context.Context, candidate, role any) (*Insight, error) {
	candidateJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate payload: %w", err)
	}
	roleJSON, err := json.MarshalIndent(role, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal role payload: %w", err)
	}

	prompt := fmt.Sprintf(promptTemplate, candidateJSON, roleJSON)

	raw, err := w.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("gemini insight response",
		zap.Int("response_length", len(raw)))

	insight, err := parseInsight(raw)
	if err != nil {
		return nil, err
	}
	insight.Raw = raw
	return insight, nil
}

func parseInsight(raw string) (*Insight, error) {
	cleaned := extractJSON(raw)

	var insight Insight
	if err := json.Unmarshal([]byte(cleaned), &insight); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if strings.TrimSpace(insight.Summary) == "" {
		return nil, fmt.Errorf("gemini response missing summary")
	}
	return &insight, nil
}

// extractJSON strips markdown code fences the model sometimes wraps
// around its JSON output.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
