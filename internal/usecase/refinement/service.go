// Package refinement improves the grammar, clarity, and formatting of a
// mathematical question via a single LLM round trip, preserving the original
// question on any failure.
package refinement

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mathdex/mathdex/internal/llmjson"
)

const systemPrompt = `You are an expert mathematical editor and educator. Your task is to refine mathematical questions to improve their grammar, clarity, and formatting while preserving their mathematical meaning.

Guidelines for refinement:
1. Fix any grammatical errors
2. Improve clarity and readability
3. Ensure proper mathematical notation and formatting
4. Make the question more precise and unambiguous
5. Preserve the original mathematical intent completely
6. Use standard mathematical terminology

Do NOT:
- Change the mathematical content or difficulty
- Add information not present in the original
- Remove important details
- Change the type of question (proof, computation, explanation, etc.)

Respond with a single JSON object and nothing else:
{"refined_question": "<the improved question>", "changes_made": "<what changed>", "reasoning": "<why the changes improve the question>"}`

// Result is the refinement outcome.
type Result struct {
	RefinedQuestion string
	ChangesMade     string
	Reasoning       string
}

// Service refines mathematical questions.
type Service struct {
	llm    Completer
	logger *zap.Logger
}

// New creates a refinement service.
func New(llm Completer, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// Refine rewrites the question for grammar, clarity, and formatting. It
// never fails the user flow: on provider or parse errors the original
// question comes back unchanged with an explanatory note.
func (s *Service) Refine(ctx context.Context, original string) Result {
	trimmed := strings.TrimSpace(original)

	user := "Original question: " + trimmed +
		"\n\nRefine this mathematical question for grammar, clarity, and formatting."

	raw, err := s.llm.Complete(ctx, systemPrompt, user)
	if err == nil {
		var parsed struct {
			RefinedQuestion string `json:"refined_question"`
			ChangesMade     string `json:"changes_made"`
			Reasoning       string `json:"reasoning"`
		}
		if perr := llmjson.Unmarshal(raw, &parsed); perr != nil {
			err = perr
		} else if strings.TrimSpace(parsed.RefinedQuestion) == "" {
			err = errors.New("empty refined_question in response")
		} else {
			return Result{
				RefinedQuestion: parsed.RefinedQuestion,
				ChangesMade:     parsed.ChangesMade,
				Reasoning:       parsed.Reasoning,
			}
		}
	}

	s.logger.Warn("Refinement LLM call failed, returning original question", zap.Error(err))
	return Result{
		RefinedQuestion: trimmed,
		ChangesMade:     "Refinement service encountered an error. Original question returned.",
		Reasoning:       "Fallback refinement",
	}
}
