package domain

import "errors"

var (
	// ErrEmbeddingProviderError signals an embedding provider failure or
	// invalid embedding input. Propagated to the caller, never retried here.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a chat completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrDegenerateVector signals a zero vector that cannot be normalized.
	ErrDegenerateVector = errors.New("degenerate vector")
	// ErrEmptyCorpus signals an index build over zero vectors.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrVectorDimMismatch signals a vector dimension mismatch between the
	// index and a query or corpus embedding. This is a configuration error.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrNotInitialized signals use of the similarity engine before
	// Initialize. Programmer error: fail fast, do not degrade.
	ErrNotInitialized = errors.New("similarity engine not initialized")
)
