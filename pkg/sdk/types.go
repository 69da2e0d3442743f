package mathdex

// ValidationResult is the response of POST /api/validate.
type ValidationResult struct {
	IsValid     bool   `json:"is_valid"`
	Message     string `json:"message"`
	Reasoning   string `json:"reasoning,omitempty"`
	Suggestions string `json:"suggestions,omitempty"`
}

// RefinementResult is the response of POST /api/refine.
type RefinementResult struct {
	RefinedQuestion string `json:"refined_question"`
	ChangesMade     string `json:"changes_made"`
	Reasoning       string `json:"reasoning,omitempty"`
}

// SimilarQuestion is one ranked match.
type SimilarQuestion struct {
	QuestionID      int     `json:"question_id"`
	Question        string  `json:"question"`
	SimilarityScore float64 `json:"similarity_score"`
	Domain          string  `json:"domain"`
	Subdomain       string  `json:"subdomain"`
	IsExactMatch    bool    `json:"is_exact_match"`
}

// SimilarityResult is the response of POST /api/similarity.
type SimilarityResult struct {
	SimilarQuestions []SimilarQuestion `json:"similar_questions"`
	Threshold        float64           `json:"threshold"`
	ExactMatchFound  bool              `json:"exact_match_found"`
	ExactMatchID     *int              `json:"exact_match_id,omitempty"`
}

// SimilarityOptions overrides server-side search defaults.
type SimilarityOptions struct {
	Threshold    *float64 `json:"threshold,omitempty"`
	TopK         *int     `json:"top_k,omitempty"`
	ExcludeExact *bool    `json:"exclude_exact,omitempty"`
}

// HealthReport is the response of GET /health.
type HealthReport struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	CorpusSize int               `json:"corpus_size"`
}
