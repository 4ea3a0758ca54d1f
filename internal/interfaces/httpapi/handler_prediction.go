package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
	"github.com/JuanCGomezS/polla-club/internal/platform/metrics"
	"github.com/JuanCGomezS/polla-club/internal/usecase"
)

func (h *Handler) SavePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePrediction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	var req savePredictionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictionService.SavePrediction(ctx, usecase.SavePredictionInput{
		GroupID:    groupID,
		UserID:     principal.UserID,
		MatchID:    matchID,
		Team1Score: *req.Team1Score,
		Team2Score: *req.Team2Score,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save prediction failed", "user_id", principal.UserID, "group_id", groupID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	metrics.PredictionsSaved.Inc()
	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(item))
}

func (h *Handler) GetMyPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyPrediction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	item, exists, err := h.predictionService.GetUserPrediction(ctx, groupID, principal.UserID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get prediction failed", "user_id", principal.UserID, "group_id", groupID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: no prediction for this match", usecase.ErrNotFound))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(item))
}

func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPredictions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	predictions, err := h.predictionService.ListUserPredictions(ctx, groupID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list predictions failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]predictionDTO, 0, len(predictions))
	for _, item := range predictions {
		items = append(items, predictionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// Scores arrive as pointers so a missing field fails validation instead of
// silently reading as 0-0.
type savePredictionRequest struct {
	Team1Score *int `json:"team1Score" validate:"required,min=0,max=99"`
	Team2Score *int `json:"team2Score" validate:"required,min=0,max=99"`
}

type predictionBreakdownDTO struct {
	ExactScore     int `json:"exactScore"`
	Winner         int `json:"winner"`
	GoalDifference int `json:"goalDifference"`
}

type predictionDTO struct {
	ID           string                  `json:"id"`
	GroupID      string                  `json:"groupId"`
	UserID       string                  `json:"userId"`
	MatchID      string                  `json:"matchId"`
	Team1Score   int                     `json:"team1Score"`
	Team2Score   int                     `json:"team2Score"`
	SubmittedAt  time.Time               `json:"submittedAt"`
	Points       *int                    `json:"points,omitempty"`
	Breakdown    *predictionBreakdownDTO `json:"breakdown,omitempty"`
	CalculatedAt *time.Time              `json:"calculatedAt,omitempty"`
}

func predictionToDTO(item prediction.Prediction) predictionDTO {
	dto := predictionDTO{
		ID:           item.ID,
		GroupID:      item.GroupID,
		UserID:       item.UserID,
		MatchID:      item.MatchID,
		Team1Score:   item.Team1Score,
		Team2Score:   item.Team2Score,
		SubmittedAt:  item.SubmittedAt,
		Points:       item.Points,
		CalculatedAt: item.CalculatedAt,
	}
	if item.Breakdown != nil {
		dto.Breakdown = &predictionBreakdownDTO{
			ExactScore:     item.Breakdown.ExactScore,
			Winner:         item.Breakdown.Winner,
			GoalDifference: item.Breakdown.GoalDifference,
		}
	}
	return dto
}
