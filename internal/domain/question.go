package domain

// QuestionRecord is an immutable corpus entry. Records are created once at
// corpus load and never mutated; the vector index refers to them by row
// position in corpus order.
type QuestionRecord struct {
	ID        int
	Text      string
	Domain    string
	Subdomain string
}

// SimilarityMatch is a single ranked result of a similarity query.
// Score is the cosine similarity of the match in [-1, 1].
type SimilarityMatch struct {
	QuestionID int
	Question   string
	Score      float64
	Domain     string
	Subdomain  string
	ExactMatch bool
}

// Similarity query defaults.
const (
	// DefaultThreshold is the minimum score for a candidate to count as similar.
	DefaultThreshold = 0.8
	// DefaultTopK caps candidate retrieval before the threshold filter.
	DefaultTopK = 10
	// ExactMatchScore is the cosine similarity above which a candidate is
	// treated as near-identical to the query.
	ExactMatchScore = 0.99
)

// SimilarityQuery holds per-query options. TopK is a ceiling on candidates
// retrieved from the index, independent of how many pass the threshold.
// A nil Threshold means "use the default"; an explicit 0 is a real value
// that admits every non-negative score. ExcludeExact drops near-identical
// questions from the match list while still reporting them via
// SimilarityResult.
type SimilarityQuery struct {
	Threshold    *float64
	TopK         int
	ExcludeExact bool
}

// Threshold returns a SimilarityQuery.Threshold for a literal value.
func Threshold(v float64) *float64 { return &v }

// WithDefaults fills unset fields with default values.
func (q SimilarityQuery) WithDefaults() SimilarityQuery {
	if q.Threshold == nil {
		q.Threshold = Threshold(DefaultThreshold)
	}
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}
	return q
}

// SimilarityResult is the outcome of a similarity query. An empty Matches
// slice means "no similar questions"; a failure to compute is always an
// explicit error, never a silent empty result. Threshold echoes the
// effective threshold for display. ExactMatchID is valid only when
// ExactMatchFound is true.
type SimilarityResult struct {
	Matches         []SimilarityMatch
	Threshold       float64
	ExactMatchFound bool
	ExactMatchID    int
}
