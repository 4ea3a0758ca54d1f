package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JuanCGomezS/polla-club/internal/domain/leaderboard"
	"github.com/JuanCGomezS/polla-club/internal/usecase"
)

func (h *Handler) GroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GroupLeaderboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	entries, err := h.leaderboardService.GroupLeaderboard(ctx, groupID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "group leaderboard failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]groupEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, groupEntryToDTO(entry))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) MatchLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MatchLeaderboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	entries, err := h.leaderboardService.MatchLeaderboard(ctx, groupID, principal.UserID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "match leaderboard failed", "user_id", principal.UserID, "group_id", groupID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, matchEntryDTO{
			UserID:     entry.UserID,
			UserName:   entry.UserName,
			Prediction: predictionToDTO(entry.Prediction),
			Points:     entry.Points,
			Rank:       entry.Rank,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

type matchEntryDTO struct {
	UserID     string        `json:"userId"`
	UserName   string        `json:"userName"`
	Prediction predictionDTO `json:"prediction"`
	Points     int           `json:"points"`
	Rank       int           `json:"rank"`
}

type groupEntryDTO struct {
	UserID           string `json:"userId"`
	UserName         string `json:"userName"`
	TotalPoints      int    `json:"totalPoints"`
	PredictionsCount int    `json:"predictionsCount"`
	Rank             int    `json:"rank"`
}

func groupEntryToDTO(entry leaderboard.GroupEntry) groupEntryDTO {
	return groupEntryDTO{
		UserID:           entry.UserID,
		UserName:         entry.UserName,
		TotalPoints:      entry.TotalPoints,
		PredictionsCount: entry.PredictionsCount,
		Rank:             entry.Rank,
	}
}
