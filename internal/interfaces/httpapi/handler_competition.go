package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/domain/competition"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/usecase"
)

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	competitions, err := h.matchService.ListCompetitions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]competitionDTO, 0, len(competitions))
	for _, item := range competitions {
		items = append(items, competitionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))

	views, err := h.matchService.ListMatches(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(views))
	for _, view := range views {
		items = append(items, matchViewToDTO(view))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	view, err := h.matchService.GetMatch(ctx, competitionID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "competition_id", competitionID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchViewToDTO(view))
}

type competitionDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

func competitionToDTO(item competition.Competition) competitionDTO {
	return competitionDTO{
		ID:        item.ID,
		Name:      item.Name,
		Type:      item.Type,
		StartDate: item.StartDate,
		EndDate:   item.EndDate,
		Status:    item.Status,
	}
}

type matchResultDTO struct {
	Team1Score int `json:"team1Score"`
	Team2Score int `json:"team2Score"`
}

type matchClockDTO struct {
	Phase          string `json:"phase"`
	Minute         *int   `json:"minute,omitempty"`
	ExtraTime      *int   `json:"extraTime,omitempty"`
	ExtraTimeTotal *int   `json:"extraTimeTotal,omitempty"`
	Seconds        *int   `json:"seconds,omitempty"`
	Display        string `json:"display,omitempty"`
}

type matchDTO struct {
	ID            string          `json:"id"`
	CompetitionID string          `json:"competitionId"`
	MatchNumber   int             `json:"matchNumber"`
	Round         string          `json:"round"`
	Team1         string          `json:"team1"`
	Team2         string          `json:"team2"`
	ScheduledTime time.Time       `json:"scheduledTime"`
	StartTime     *time.Time      `json:"startTime,omitempty"`
	Status        string          `json:"status"`
	Result        *matchResultDTO `json:"result,omitempty"`
	Clock         *matchClockDTO  `json:"clock,omitempty"`
}

func matchViewToDTO(view usecase.MatchView) matchDTO {
	m := view.Match
	dto := matchDTO{
		ID:            m.ID,
		CompetitionID: m.CompetitionID,
		MatchNumber:   m.MatchNumber,
		Round:         m.Round,
		Team1:         m.Team1,
		Team2:         m.Team2,
		ScheduledTime: m.ScheduledTime,
		StartTime:     m.StartTime,
		Status:        match.NormalizeStatus(m.Status),
	}
	if m.Result != nil {
		dto.Result = &matchResultDTO{
			Team1Score: m.Result.Team1Score,
			Team2Score: m.Result.Team2Score,
		}
	}
	if view.Clock != nil {
		dto.Clock = &matchClockDTO{
			Phase:          string(view.Clock.Phase),
			Minute:         view.Clock.Minute,
			ExtraTime:      view.Clock.ExtraTime,
			ExtraTimeTotal: view.Clock.ExtraTimeTotal,
			Seconds:        view.Clock.Seconds,
			Display:        view.ClockDisplay,
		}
	}
	return dto
}
