// Package similarity implements semantic duplicate detection for
// mathematical questions: corpus embedding and index construction at
// initialization, then embed, search, threshold-filter, and rank per query.
package similarity

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mathdex/mathdex/internal/domain"
	"github.com/mathdex/mathdex/internal/index"
)

const defaultMaxBatchSize = 64

// Engine is the similarity search entry point exposed to the orchestrating
// layer. It has two states: uninitialized (after New) and ready (after a
// successful Initialize). Once ready, the index and record table are
// read-only, so FindSimilar is safe for concurrent callers.
type Engine struct {
	embedder     Embedder
	logger       *zap.Logger
	maxBatchSize int

	mu      sync.RWMutex
	ready   bool
	records []domain.QuestionRecord // row-aligned with idx; degenerate rows excluded
	idx     *index.Flat             // nil when the corpus is empty
}

// New creates an uninitialized engine.
func New(embedder Embedder, logger *zap.Logger) *Engine {
	return &Engine{
		embedder:     embedder,
		logger:       logger,
		maxBatchSize: defaultMaxBatchSize,
	}
}

// WithMaxBatchSize caps how many texts are sent per embedding batch call.
func (e *Engine) WithMaxBatchSize(n int) *Engine {
	if n > 0 {
		e.maxBatchSize = n
	}
	return e
}

// Initialize embeds every record's text and builds the index in record
// order. An empty corpus produces a valid engine whose queries report zero
// matches. Records with degenerate embeddings are skipped with a warning:
// one bad embedding must not take down the whole similarity feature.
// Calling Initialize again rebuilds cleanly and swaps the new index in under
// the lock.
func (e *Engine) Initialize(ctx context.Context, records []domain.QuestionRecord) error {
	if len(records) == 0 {
		e.swap(nil, nil)
		e.logger.Warn("Similarity engine initialized with empty corpus; all queries will report no matches")
		return nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}

	vectors, err := e.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}

	// Dimension is discovered from the first embedding, never hardcoded.
	dim := 0
	kept := make([][]float32, 0, len(vectors))
	keptRecords := make([]domain.QuestionRecord, 0, len(records))
	for i, vec := range vectors {
		if _, err := index.Normalize(vec); err != nil {
			e.logger.Warn("Skipping record with degenerate embedding",
				zap.Int("question_id", records[i].ID),
				zap.Error(err),
			)
			continue
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return fmt.Errorf("record %d embedding has dimension %d, want %d: %w",
				records[i].ID, len(vec), dim, domain.ErrVectorDimMismatch)
		}
		kept = append(kept, vec)
		keptRecords = append(keptRecords, records[i])
	}

	var idx *index.Flat
	if len(kept) > 0 {
		idx, err = index.NewFlat(kept)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
	} else {
		e.logger.Warn("All corpus embeddings were degenerate; engine will report no matches")
	}

	e.swap(keptRecords, idx)

	if idx != nil {
		e.logger.Info("Similarity index built",
			zap.Int("vectors", idx.Len()),
			zap.Int("dimension", idx.Dim()),
		)
	}
	return nil
}

// FindSimilar embeds the query, retrieves the top candidates, filters by
// threshold, and maps the survivors back to their records in descending
// score order. An empty trimmed query and an empty corpus both yield an
// empty result, not an error; a failed query embedding is surfaced to the
// caller so it is never mistaken for "no similar questions".
func (e *Engine) FindSimilar(
	ctx context.Context, queryText string, cfg domain.SimilarityQuery,
) (domain.SimilarityResult, error) {
	e.mu.RLock()
	ready, idx, records := e.ready, e.idx, e.records
	e.mu.RUnlock()

	cfg = cfg.WithDefaults()
	threshold := *cfg.Threshold
	result := domain.SimilarityResult{Threshold: threshold}

	if !ready {
		return result, domain.ErrNotInitialized
	}

	query := strings.TrimSpace(queryText)
	if query == "" || idx == nil {
		return result, nil
	}

	emb, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return result, fmt.Errorf("embed query: %w", err)
	}

	// Retrieve extra candidates when exact matches may be dropped below.
	k := cfg.TopK
	if cfg.ExcludeExact {
		k *= 2
	}

	hits, err := idx.Search(emb.Embedding, k)
	if err != nil {
		return result, fmt.Errorf("search index: %w", err)
	}

	normQuery := normalizeText(query)
	for _, h := range hits {
		if h.Score < threshold {
			break // hits are sorted descending: nothing below passes either
		}
		rec := records[h.Row]

		exact := h.Score >= domain.ExactMatchScore || normalizeText(rec.Text) == normQuery
		if exact && !result.ExactMatchFound {
			result.ExactMatchFound = true
			result.ExactMatchID = rec.ID
		}
		if exact && cfg.ExcludeExact {
			continue
		}

		result.Matches = append(result.Matches, domain.SimilarityMatch{
			QuestionID: rec.ID,
			Question:   rec.Text,
			Score:      h.Score,
			Domain:     rec.Domain,
			Subdomain:  rec.Subdomain,
			ExactMatch: exact,
		})
		if len(result.Matches) >= cfg.TopK {
			break
		}
	}

	return result, nil
}

// Ready reports whether Initialize has completed.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

// Size returns the number of indexed records.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.idx == nil {
		return 0
	}
	return e.idx.Len()
}

func (e *Engine) swap(records []domain.QuestionRecord, idx *index.Flat) {
	e.mu.Lock()
	e.records, e.idx, e.ready = records, idx, true
	e.mu.Unlock()
}

// embedAll vectorizes texts in maxBatchSize chunks, preserving input order.
func (e *Engine) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.maxBatchSize {
		end := min(start+e.maxBatchSize, len(texts))

		var res domain.BatchEmbeddingResult
		var err error
		if be, ok := e.embedder.(domain.BatchEmbedder); ok {
			res, err = be.BatchEmbed(ctx, texts[start:end])
		} else {
			res, err = domain.BatchFallback(ctx, e.embedder, texts[start:end])
		}
		if err != nil {
			return nil, err
		}
		if len(res.Embeddings) != end-start {
			return nil, fmt.Errorf("batch returned %d embeddings for %d texts: %w",
				len(res.Embeddings), end-start, domain.ErrEmbeddingProviderError)
		}
		out = append(out, res.Embeddings...)
	}
	return out, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeText lowercases and collapses whitespace so near-identical
// questions compare equal regardless of formatting.
func normalizeText(s string) string {
	return strings.ToLower(whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " "))
}
