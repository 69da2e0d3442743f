// Package validation decides whether user input is a well-posed mathematical
// question via a single LLM round trip with deterministic fallbacks.
package validation

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mathdex/mathdex/internal/llmjson"
)

// minQuestionLength is the shortest input worth sending to the model.
const minQuestionLength = 10

const systemPrompt = `You are an expert mathematician and educator. Your task is to determine if a user's input is a valid mathematical question.

A valid mathematical question should:
1. Be clearly stated and grammatically correct
2. Contain mathematical content (concepts, problems, proofs, computations, etc.)
3. Be answerable or discussable in a mathematical context
4. Not be just a casual conversation or non-mathematical query

Examples of VALID mathematical questions:
- "What is the derivative of x^2?"
- "Prove that the square root of 2 is irrational"
- "How do I solve the equation 2x + 3 = 7?"
- "Explain the concept of limits in calculus"

Examples of INVALID inputs:
- "Hello, how are you?"
- "What's the weather today?"
- "Tell me a joke"
- Just numbers or symbols without context: "2+2"

Respond with a single JSON object and nothing else:
{"is_valid": <boolean>, "reasoning": "<brief explanation>", "suggestions": "<improvement suggestions if invalid, empty string if valid>"}`

// Result is the validation outcome presented to the user.
type Result struct {
	IsValid     bool
	Message     string
	Reasoning   string
	Suggestions string
}

// Service validates candidate mathematical questions.
type Service struct {
	llm    Completer
	logger *zap.Logger
}

// New creates a validation service.
func New(llm Completer, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// Validate checks whether input is a valid mathematical question. It never
// fails the user flow: provider or parse errors degrade to a permissive
// fallback that lets the pipeline proceed.
func (s *Service) Validate(ctx context.Context, input string) Result {
	trimmed := strings.TrimSpace(input)
	if utf8.RuneCountInString(trimmed) < minQuestionLength {
		return Result{
			IsValid:   false,
			Message:   "Input is too short. Please provide a complete mathematical question.",
			Reasoning: "Input length check failed",
		}
	}

	user := "User input: " + trimmed +
		"\n\nAnalyze this input and determine if it is a valid mathematical question."

	raw, err := s.llm.Complete(ctx, systemPrompt, user)
	if err == nil {
		var parsed struct {
			IsValid     bool   `json:"is_valid"`
			Reasoning   string `json:"reasoning"`
			Suggestions string `json:"suggestions"`
		}
		if perr := llmjson.Unmarshal(raw, &parsed); perr == nil {
			res := Result{
				IsValid:   parsed.IsValid,
				Reasoning: parsed.Reasoning,
			}
			if parsed.IsValid {
				res.Message = "Your question is valid! Let's proceed to refinement."
			} else {
				res.Message = "Your input doesn't appear to be a valid mathematical question. " + parsed.Suggestions
				res.Suggestions = parsed.Suggestions
			}
			return res
		} else {
			err = perr
		}
	}

	s.logger.Warn("Validation LLM call failed, defaulting to valid", zap.Error(err))
	return Result{
		IsValid:   true,
		Message:   "Question received (validation check had issues, but proceeding).",
		Reasoning: "Fallback validation",
	}
}
