package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/usecase"
)

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGroup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createGroupRequest
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

	item, err := h.groupService.CreateGroup(ctx, usecase.CreateGroupInput{
		UserID:        principal.UserID,
		CompetitionID: req.CompetitionID,
		Name:          req.Name,
		Rules:         req.Rules.toDomain(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create group failed", "user_id", principal.UserID, "competition_id", req.CompetitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, groupToDTO(item))
}

func (h *Handler) ListMyGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyGroups")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	groups, err := h.groupService.ListMyGroups(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my groups failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]groupDTO, 0, len(groups))
	for _, item := range groups {
		items = append(items, groupToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGroup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	item, err := h.groupService.GetGroup(ctx, groupID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get group failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupToDTO(item))
}

func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinGroup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req joinGroupRequest
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

	item, err := h.groupService.JoinByCode(ctx, usecase.JoinGroupInput{
		UserID: principal.UserID,
		Code:   req.Code,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join group failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupToDTO(item))
}

type groupRulesDTO struct {
	PointsExactScore     int `json:"pointsExactScore" validate:"required,min=1"`
	PointsWinner         int `json:"pointsWinner" validate:"required,min=1"`
	PointsGoalDifference int `json:"pointsGoalDifference" validate:"min=0"`
}

func (d *groupRulesDTO) toDomain() *group.Rules {
	if d == nil {
		return nil
	}
	return &group.Rules{
		PointsExactScore:     d.PointsExactScore,
		PointsWinner:         d.PointsWinner,
		PointsGoalDifference: d.PointsGoalDifference,
	}
}

type createGroupRequest struct {
	CompetitionID string         `json:"competitionId" validate:"required"`
	Name          string         `json:"name" validate:"required,max=100"`
	Rules         *groupRulesDTO `json:"rules,omitempty"`
}

type joinGroupRequest struct {
	Code string `json:"code" validate:"required,min=6,max=12"`
}

type groupDTO struct {
	ID            string        `json:"id"`
	CompetitionID string        `json:"competitionId"`
	Name          string        `json:"name"`
	Code          string        `json:"code"`
	AdminID       string        `json:"adminId"`
	Participants  []string      `json:"participants"`
	IsActive      bool          `json:"isActive"`
	Rules         groupRulesDTO `json:"rules"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func groupToDTO(item group.Group) groupDTO {
	return groupDTO{
		ID:            item.ID,
		CompetitionID: item.CompetitionID,
		Name:          item.Name,
		Code:          item.Code,
		AdminID:       item.AdminID,
		Participants:  item.Participants,
		IsActive:      item.IsActive,
		Rules: groupRulesDTO{
			PointsExactScore:     item.Rules.PointsExactScore,
			PointsWinner:         item.Rules.PointsWinner,
			PointsGoalDifference: item.Rules.PointsGoalDifference,
		},
		CreatedAt: item.CreatedAt,
	}
}
