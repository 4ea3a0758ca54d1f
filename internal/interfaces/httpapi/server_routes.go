package httpapi

import (
	"net/http"

	"github.com/JuanCGomezS/polla-club/internal/platform/metrics"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/competitions", handler.ListCompetitions)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/matches/{matchID}", handler.GetMatch)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	authorized := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, h)
	}

	mux.Handle("POST /v1/groups", authorized(handler.CreateGroup))
	mux.Handle("GET /v1/groups", authorized(handler.ListMyGroups))
	mux.Handle("POST /v1/groups/join", authorized(handler.JoinGroup))
	mux.Handle("GET /v1/groups/{groupID}", authorized(handler.GetGroup))

	mux.Handle("PUT /v1/groups/{groupID}/matches/{matchID}/prediction", authorized(handler.SavePrediction))
	mux.Handle("GET /v1/groups/{groupID}/matches/{matchID}/prediction", authorized(handler.GetMyPrediction))
	mux.Handle("GET /v1/groups/{groupID}/predictions", authorized(handler.ListMyPredictions))

	mux.Handle("GET /v1/groups/{groupID}/leaderboard", authorized(handler.GroupLeaderboard))
	mux.Handle("GET /v1/groups/{groupID}/matches/{matchID}/leaderboard", authorized(handler.MatchLeaderboard))
	mux.Handle("GET /v1/groups/{groupID}/leaderboard/live", authorized(handler.LiveLeaderboard))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, jobToken string) {
	mux.Handle("POST /v1/internal/jobs/notify-upcoming", RequireInternalJobToken(jobToken, http.HandlerFunc(handler.NotifyUpcomingMatches)))
}
