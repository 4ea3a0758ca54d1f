package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JuanCGomezS/polla-club/internal/usecase"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser WebSocket clients cannot set custom headers, so origin checks
	// happen in the CORS middleware for the rest of the API and tokens reach
	// this endpoint via query parameter. The upgrade itself accepts any
	// origin; authorization already ran before the handler.
	CheckOrigin: func(*http.Request) bool { return true },
}

// LiveLeaderboard upgrades the request to a WebSocket and streams leaderboard
// snapshots for the group until the client disconnects or the feed fails.
func (h *Handler) LiveLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LiveLeaderboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	feed, err := h.liveFeedService.StreamGroupLeaderboard(ctx, groupID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "open live leaderboard feed failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		feed.Close()
		h.logger.WarnContext(ctx, "websocket upgrade failed", "group_id", groupID, "error", err)
		return
	}
	defer conn.Close()
	defer feed.Close()

	// Reads only serve close/pong detection; clients never send payloads.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		conn.SetPongHandler(func(string) error { return nil })
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pings := time.NewTicker(wsPingInterval)
	defer pings.Stop()

	for {
		select {
		case <-clientGone:
			return
		case <-pings.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case snapshot, open := <-feed.Updates():
			if !open {
				if feedErr := feed.Err(); feedErr != nil {
					h.logger.WarnContext(ctx, "live leaderboard feed ended with error", "group_id", groupID, "error", feedErr)
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(snapshotToDTO(snapshot)); err != nil {
				return
			}
		}
	}
}

type leaderboardSnapshotDTO struct {
	GroupID    string          `json:"groupId"`
	Entries    []groupEntryDTO `json:"entries"`
	ComputedAt time.Time       `json:"computedAt"`
}

func snapshotToDTO(snapshot usecase.LeaderboardSnapshot) leaderboardSnapshotDTO {
	entries := make([]groupEntryDTO, 0, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		entries = append(entries, groupEntryToDTO(entry))
	}
	return leaderboardSnapshotDTO{
		GroupID:    snapshot.GroupID,
		Entries:    entries,
		ComputedAt: snapshot.ComputedAt,
	}
}
