package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
)

type resultRepo interface {
	ListByRoomToken(ctx context.Context, token string) ([]*entity.MatchResult, error)
}

type ResultsHandler interface {
	ListResults(w http.ResponseWriter, r *http.Request)
}

type resultsHandler struct {
	logger  *slog.Logger
	results resultRepo
}

func NewResultsHandler(logger *slog.Logger, results resultRepo) ResultsHandler {
	return &resultsHandler{
		logger:  logger,
		results: results,
	}
}

// ListResults returns the finished matches recorded for one room,
// identified by its derived token.
func (that *resultsHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("room")
	if token == "" {
		http.Error(w, "room query parameter is required", http.StatusBadRequest)
		return
	}

	results, err := that.results.ListByRoomToken(r.Context(), token)
	if err != nil {
		that.logger.Error("failed to list match results", "token", token, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(results); err != nil {
		that.logger.Error("failed to encode match results", "error", err)
	}
}
