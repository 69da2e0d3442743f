// Package index implements exact nearest-neighbor search over unit-norm
// vectors. Every stored row is L2-normalized, so inner product equals cosine
// similarity. The search is an exhaustive O(N*D) scan: exact and fully
// reproducible rankings, sized for corpora up to tens of thousands of rows.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/mathdex/mathdex/internal/domain"
)

// Hit is a single search result: a row position in build order and its
// cosine similarity to the query.
type Hit struct {
	Row   int
	Score float64
}

// Flat is an exact inner-product index. Rows are stored contiguously in a
// single backing array in build order. Immutable after construction and safe
// for concurrent Search calls; a rebuild constructs a new Flat.
type Flat struct {
	dim  int
	rows int
	data []float32 // rows*dim, row i at data[i*dim:(i+1)*dim]
}

// NewFlat builds an index from vectors, normalizing each row to unit L2
// norm. All vectors must share the same dimension. Zero input rows yield
// ErrEmptyCorpus; a zero vector yields ErrDegenerateVector with its row.
func NewFlat(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	dim := len(vectors[0])
	f := &Flat{
		dim:  dim,
		rows: len(vectors),
		data: make([]float32, 0, len(vectors)*dim),
	}

	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("row %d has dimension %d, want %d: %w",
				i, len(v), dim, domain.ErrVectorDimMismatch)
		}
		n, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		f.data = append(f.data, n...)
	}

	return f, nil
}

// Len returns the number of indexed rows.
func (f *Flat) Len() int { return f.rows }

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Row returns a copy of the stored (normalized) row i.
func (f *Flat) Row(i int) []float32 {
	out := make([]float32, f.dim)
	copy(out, f.data[i*f.dim:(i+1)*f.dim])
	return out
}

// Search normalizes the query and returns the k highest-scoring rows in
// strictly descending score order. Equal scores break toward the lower row,
// keeping output deterministic. k beyond the corpus size is clamped, never
// an error.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has dimension %d, want %d: %w",
			len(query), f.dim, domain.ErrVectorDimMismatch)
	}
	q, err := Normalize(query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	if k <= 0 {
		return nil, nil
	}
	if k > f.rows {
		k = f.rows
	}

	hits := make([]Hit, f.rows)
	for i := 0; i < f.rows; i++ {
		row := f.data[i*f.dim : (i+1)*f.dim]
		var dot float64
		for j, qv := range q {
			dot += float64(qv) * float64(row[j])
		}
		hits[i] = Hit{Row: i, Score: dot}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Row < hits[j].Row
	})

	return hits[:k], nil
}

// Normalize returns a unit-L2-norm copy of v. A zero (or empty) vector has
// no direction and cannot be normalized.
func Normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return nil, domain.ErrDegenerateVector
	}

	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out, nil
}
