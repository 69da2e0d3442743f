// Package chi provides the HTTP API on top of the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mathdex/mathdex/internal/domain"
	healthuc "github.com/mathdex/mathdex/internal/usecase/health"
	"github.com/mathdex/mathdex/internal/usecase/refinement"
	"github.com/mathdex/mathdex/internal/usecase/validation"
)

// Error codes returned in the body of error responses.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeProviderError    = "provider_error"
	codeNotReady         = "not_ready"
	codeInternalError    = "internal_error"
)

// Validator checks whether input is a well-formed mathematical question.
type Validator interface {
	Validate(ctx context.Context, input string) validation.Result
}

// Refiner rewrites a question for grammar, clarity and formatting.
type Refiner interface {
	Refine(ctx context.Context, original string) refinement.Result
}

// SimilaritySearcher finds corpus questions semantically close to the query.
type SimilaritySearcher interface {
	FindSimilar(ctx context.Context, queryText string, cfg domain.SimilarityQuery) (domain.SimilarityResult, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the question pipeline over HTTP.
type Server struct {
	validator     Validator
	refiner       Refiner
	similarity    SimilaritySearcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	validator Validator,
	refiner Refiner,
	similarity SimilaritySearcher,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		validator:  validator,
		refiner:    refiner,
		similarity: similarity,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrNotInitialized, http.StatusServiceUnavailable, codeNotReady),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/validate", s.ValidateQuestion)
	r.Post("/api/refine", s.RefineQuestion)
	r.Post("/api/similarity", s.CheckSimilarity)
	r.Post("/api/chat", s.Chat)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// --- Request/response shapes ---

type userMessage struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`

	// Similarity overrides; zero values mean "use configured defaults".
	Threshold    *float64 `json:"threshold,omitempty"`
	TopK         *int     `json:"top_k,omitempty"`
	ExcludeExact *bool    `json:"exclude_exact,omitempty"`
}

type validationResponse struct {
	IsValid     bool   `json:"is_valid"`
	Message     string `json:"message"`
	Reasoning   string `json:"reasoning,omitempty"`
	Suggestions string `json:"suggestions,omitempty"`
}

type refinementResponse struct {
	RefinedQuestion string `json:"refined_question"`
	ChangesMade     string `json:"changes_made"`
	Reasoning       string `json:"reasoning,omitempty"`
}

type similarityResult struct {
	QuestionID      int     `json:"question_id"`
	Question        string  `json:"question"`
	SimilarityScore float64 `json:"similarity_score"`
	Domain          string  `json:"domain"`
	Subdomain       string  `json:"subdomain"`
	IsExactMatch    bool    `json:"is_exact_match"`
}

type similarityResponse struct {
	SimilarQuestions []similarityResult `json:"similar_questions"`
	Threshold        float64            `json:"threshold"`
	ExactMatchFound  bool               `json:"exact_match_found"`
	ExactMatchID     *int               `json:"exact_match_id,omitempty"`
}

type chatResponse struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	NextAction string `json:"next_action,omitempty"`
	SessionID  string `json:"session_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Handlers ---

// ValidateQuestion handles POST /api/validate.
func (s *Server) ValidateQuestion(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	res := s.validator.Validate(r.Context(), req.Message)

	writeJSON(w, http.StatusOK, validationResponse{
		IsValid:     res.IsValid,
		Message:     res.Message,
		Reasoning:   res.Reasoning,
		Suggestions: res.Suggestions,
	})
}

// RefineQuestion handles POST /api/refine.
func (s *Server) RefineQuestion(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	res := s.refiner.Refine(r.Context(), req.Message)

	writeJSON(w, http.StatusOK, refinementResponse{
		RefinedQuestion: res.RefinedQuestion,
		ChangesMade:     res.ChangesMade,
		Reasoning:       res.Reasoning,
	})
}

// CheckSimilarity handles POST /api/similarity.
func (s *Server) CheckSimilarity(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	cfg := domain.SimilarityQuery{ExcludeExact: true}
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "threshold must be between 0 and 1")
			return
		}
		cfg.Threshold = req.Threshold
	}
	if req.TopK != nil {
		if *req.TopK <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must be positive")
			return
		}
		cfg.TopK = *req.TopK
	}
	if req.ExcludeExact != nil {
		cfg.ExcludeExact = *req.ExcludeExact
	}

	res, err := s.similarity.FindSimilar(r.Context(), req.Message, cfg)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, similarityToResponse(res))
}

// Chat handles POST /api/chat: keyword routing for the conversational flow.
// The heavy lifting stays on the dedicated endpoints.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp := chatResponse{SessionID: sessionID}
	switch strings.ToLower(strings.TrimSpace(req.Message)) {
	case "accept", "yes", "ok", "confirm":
		resp.Type = "acceptance"
		resp.Message = "Question accepted! Checking for similar questions..."
		resp.NextAction = "similarity_check"
	case "reject", "no", "revise", "change":
		resp.Type = "revision_request"
		resp.Message = "Please provide your revised question or describe what changes you'd like."
		resp.NextAction = "refinement"
	default:
		resp.Type = "message"
		resp.Message = "Please use /api/validate, /api/refine, or /api/similarity for specific operations."
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":      report.Status,
		"checks":      report.Checks,
		"corpus_size": report.CorpusSize,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

func (s *Server) decodeMessage(w http.ResponseWriter, r *http.Request) (userMessage, bool) {
	var req userMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return userMessage{}, false
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "message is required")
		return userMessage{}, false
	}
	return req, true
}

func similarityToResponse(res domain.SimilarityResult) similarityResponse {
	items := make([]similarityResult, len(res.Matches))
	for i, m := range res.Matches {
		items[i] = similarityResult{
			QuestionID:      m.QuestionID,
			Question:        m.Question,
			SimilarityScore: m.Score,
			Domain:          m.Domain,
			Subdomain:       m.Subdomain,
			IsExactMatch:    m.ExactMatch,
		}
	}

	resp := similarityResponse{
		SimilarQuestions: items,
		Threshold:        res.Threshold,
		ExactMatchFound:  res.ExactMatchFound,
	}
	if res.ExactMatchFound {
		id := res.ExactMatchID
		resp.ExactMatchID = &id
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMProviderError,
		domain.ErrNotInitialized,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
