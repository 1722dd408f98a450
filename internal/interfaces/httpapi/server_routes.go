package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/checkouts/{target}", handler.SuggestCheckout)

	mux.HandleFunc("POST /v1/matches", handler.StartMatch)
	mux.HandleFunc("GET /v1/matches/summaries", handler.ListMatchSummaries)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("DELETE /v1/matches/{matchID}", handler.AbandonMatch)
	mux.HandleFunc("POST /v1/matches/{matchID}/visits", handler.RecordVisit)
	mux.HandleFunc("POST /v1/matches/{matchID}/checkout/confirm", handler.ConfirmCheckout)
	mux.HandleFunc("POST /v1/matches/{matchID}/checkout/cancel", handler.CancelCheckout)
	mux.HandleFunc("POST /v1/matches/{matchID}/undo", handler.UndoVisit)

	mux.HandleFunc("POST /v1/tournaments", handler.CreateTournament)
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("DELETE /v1/tournaments/{tournamentID}", handler.DeleteTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/overview", handler.GetTournamentOverview)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/standings", handler.GetTournamentStandings)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/leaderboard", handler.GetTournamentLeaderboard)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/matches/{matchID}/start", handler.StartTournamentMatch)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/matches/{matchID}/result", handler.RecordTournamentResult)
	mux.HandleFunc("DELETE /v1/tournaments/{tournamentID}/matches/{matchID}/result", handler.RevertTournamentResult)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeJob)))
}
