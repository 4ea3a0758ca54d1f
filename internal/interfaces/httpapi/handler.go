package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
	"github.com/JuanCGomezS/polla-club/internal/usecase"
)

type Handler struct {
	matchService        *usecase.MatchService
	groupService        *usecase.GroupService
	predictionService   *usecase.PredictionService
	leaderboardService  *usecase.LeaderboardService
	liveFeedService     *usecase.LiveFeedService
	notificationService *usecase.NotificationService
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	groupService *usecase.GroupService,
	predictionService *usecase.PredictionService,
	leaderboardService *usecase.LeaderboardService,
	liveFeedService *usecase.LiveFeedService,
	notificationService *usecase.NotificationService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:        matchService,
		groupService:        groupService,
		predictionService:   predictionService,
		leaderboardService:  leaderboardService,
		liveFeedService:     liveFeedService,
		notificationService: notificationService,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
