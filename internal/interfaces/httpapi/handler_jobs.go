package httpapi

import (
	"net/http"
)

func (h *Handler) NotifyUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.NotifyUpcomingMatches")
	defer span.End()

	result, err := h.notificationService.NotifyUpcomingMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "notify upcoming matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "notify upcoming matches finished",
		"matches_found", result.MatchesFound,
		"users_notified", result.UsersNotified,
		"tokens_sent", result.TokensSent,
		"tokens_failed", result.TokensFailed,
		"tokens_pruned", result.TokensPruned,
	)
	writeSuccess(ctx, w, http.StatusOK, notifyResultDTO{
		MatchesFound:  result.MatchesFound,
		UsersNotified: result.UsersNotified,
		TokensSent:    result.TokensSent,
		TokensFailed:  result.TokensFailed,
		TokensPruned:  result.TokensPruned,
	})
}

type notifyResultDTO struct {
	MatchesFound  int `json:"matchesFound"`
	UsersNotified int `json:"usersNotified"`
	TokensSent    int `json:"tokensSent"`
	TokensFailed  int `json:"tokensFailed"`
	TokensPruned  int `json:"tokensPruned"`
}
