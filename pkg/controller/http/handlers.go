package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/usecase"
	"github.com/wellspring-lab/wellspring/pkg/utils/errutil"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// writeError maps domain errors to status codes. Generator failures become
// 502 with a machine-readable code so clients can distinguish upstream
// provider failures from their own bad requests.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		errutil.Log(r.Context(), err, "bad request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.Is(err, types.ErrGeneratorTimeout), errors.Is(err, types.ErrGenerator):
		errutil.Log(r.Context(), err, "generator failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: "response generation failed",
			Code:  "generator_failed",
		})
	default:
		errutil.Log(r.Context(), err, "internal error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

type turnRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type turnResponse struct {
	ResponseText string `json:"response_text"`
	Topic        string `json:"topic"`
	Crisis       bool   `json:"crisis"`
	UsedContext  bool   `json:"used_context"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err)))
		return
	}

	result, err := s.uc.Turn.HandleTurn(r.Context(), types.UserID(req.UserID), req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		ResponseText: result.ResponseText,
		Topic:        result.Topic.String(),
		Crisis:       result.Crisis,
		UsedContext:  result.UsedContext,
	})
}

type turnView struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type sessionResponse struct {
	UserID         string     `json:"user_id"`
	CurrentTopic   string     `json:"current_topic"`
	EmotionalState string     `json:"emotional_state"`
	TurnCount      int        `json:"turn_count"`
	LastUpdated    time.Time  `json:"last_updated"`
	Turns          []turnView `json:"turns"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := types.UserID(chi.URLParam(r, "userID"))

	session, err := s.uc.Session.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := sessionResponse{
		UserID:         string(session.UserID),
		CurrentTopic:   session.CurrentTopic.String(),
		EmotionalState: session.EmotionalState.String(),
		TurnCount:      session.TurnCount(),
		LastUpdated:    session.LastUpdated,
		Turns:          make([]turnView, 0, len(session.Turns)),
	}
	for _, t := range session.Turns {
		resp.Turns = append(resp.Turns, turnView{
			Role:      string(t.Role),
			Text:      t.Text,
			Timestamp: t.Timestamp,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type moodRequest struct {
	UserID      string `json:"user_id"`
	Score       int    `json:"score"`
	SessionType string `json:"session_type"`
	Feedback    string `json:"feedback"`
}

type moodResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleRecordMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err)))
		return
	}

	entry, err := s.uc.Mood.Record(r.Context(), types.UserID(req.UserID), req.Score, req.SessionType, req.Feedback)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, moodResponse{
		ID:        string(entry.ID),
		CreatedAt: entry.CreatedAt,
	})
}

type analyticsResponse struct {
	UserID        string  `json:"user_id"`
	AverageMood   float64 `json:"average_mood"`
	Trend         string  `json:"trend"`
	TotalSessions int     `json:"total_sessions"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := types.UserID(chi.URLParam(r, "userID"))

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, r, goerr.Wrap(usecase.ErrInvalidRequest, "invalid days parameter", goerr.V("days", v)))
			return
		}
		days = n
	}

	analytics, err := s.uc.Mood.Analytics(r.Context(), userID, days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analyticsResponse{
		UserID:        string(analytics.UserID),
		AverageMood:   analytics.AverageMood,
		Trend:         string(analytics.Trend),
		TotalSessions: analytics.TotalSessions,
	})
}

type indexStatsResponse struct {
	TotalChunks int            `json:"total_chunks"`
	Dimension   int            `json:"dimension"`
	ByCategory  map[string]int `json:"by_category"`
}

func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	stats := s.uc.Ingest.IndexStats()

	byCategory := make(map[string]int, len(stats.ByCategory))
	for cat, n := range stats.ByCategory {
		byCategory[string(cat)] = n
	}

	writeJSON(w, http.StatusOK, indexStatsResponse{
		TotalChunks: stats.TotalChunks,
		Dimension:   stats.Dimension,
		ByCategory:  byCategory,
	})
}

type healthResponse struct {
	Status      string `json:"status"`
	IndexReady  bool   `json:"index_ready"`
	TotalChunks int    `json:"total_chunks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.uc.Ingest.IndexStats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		IndexReady:  s.uc.Ingest.IndexReady(),
		TotalChunks: stats.TotalChunks,
	})
}
