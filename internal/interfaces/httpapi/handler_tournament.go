package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/usecase"
)

type tournamentPlayerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}

type phaseFormatsRequest struct {
	RoundRobin     *matchFormatRequest         `json:"roundRobin"`
	Knockout       *matchFormatRequest         `json:"knockout"`
	KnockoutRounds map[int]*matchFormatRequest `json:"knockoutRounds"`
}

func (req *phaseFormatsRequest) toDomain() *tournament.PhaseFormats {
	if req == nil {
		return nil
	}
	formats := &tournament.PhaseFormats{
		RoundRobin: req.RoundRobin.toDomain(),
		Knockout:   req.Knockout.toDomain(),
	}
	if len(req.KnockoutRounds) > 0 {
		formats.KnockoutRounds = make(map[int]*game.MatchFormat, len(req.KnockoutRounds))
		for round, f := range req.KnockoutRounds {
			formats.KnockoutRounds[round] = f.toDomain()
		}
	}
	return formats
}

type createTournamentRequest struct {
	Name          string                    `json:"name" validate:"required,max=100"`
	Date          time.Time                 `json:"date"`
	Mode          string                    `json:"mode" validate:"required,oneof=round_robin knockout combined"`
	StartingScore int                       `json:"startingScore" validate:"min=0"`
	DoubleOut     bool                      `json:"doubleOut"`
	GroupCount    int                       `json:"groupCount" validate:"min=0"`
	Format        *matchFormatRequest       `json:"format"`
	FormatByPhase *phaseFormatsRequest      `json:"formatByPhase"`
	Players       []tournamentPlayerRequest `json:"players" validate:"required,min=2,dive"`
}

type recordResultRequest struct {
	Lines []resultLineRequest `json:"lines" validate:"required,min=2,dive"`
}

type resultLineRequest struct {
	PlayerID         string  `json:"playerId" validate:"required"`
	Name             string  `json:"name"`
	IsWinner         bool    `json:"isWinner"`
	Average          float64 `json:"average"`
	CheckoutRate     float64 `json:"checkoutRate"`
	CheckoutAttempts int     `json:"checkoutAttempts"`
	CheckoutHits     int     `json:"checkoutHits"`
	DoubleDarts      int     `json:"doubleDarts"`
	Count100Plus     int     `json:"count100Plus"`
	Count140Plus     int     `json:"count140Plus"`
	Count180         int     `json:"count180"`
	TotalDarts       int     `json:"totalDarts"`
	TotalPoints      int     `json:"totalPoints"`
	HighestCheckout  int     `json:"highestCheckout"`
	LegsWon          int     `json:"legsWon"`
	LegsLost         int     `json:"legsLost"`
}

type recomputeRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	MaxWorkers   int    `json:"maxWorkers" validate:"min=0"`
	DryRun       bool   `json:"dryRun"`
}

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTournament")
	defer span.End()

	var req createTournamentRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	players := make([]tournament.Player, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, tournament.Player{PlayerID: p.ID, Name: p.Name})
	}

	detail, err := h.tournamentService.Create(ctx, usecase.CreateTournamentInput{
		Name: req.Name,
		Date: req.Date,
		Mode: tournament.Mode(req.Mode),
		Settings: tournament.Settings{
			StartingScore: req.StartingScore,
			DoubleOut:     req.DoubleOut,
			Format:        req.Format.toDomain(),
			FormatByPhase: req.FormatByPhase.toDomain(),
			GroupCount:    req.GroupCount,
		},
		Players: players,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, detailToDTO(ctx, detail))
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	items, err := h.tournamentService.List(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dtos := make([]tournamentDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, tournamentToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	detail, err := h.tournamentService.Get(ctx, tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, detailToDTO(ctx, detail))
}

func (h *Handler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTournament")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	if err := h.tournamentService.Delete(ctx, tournamentID); err != nil {
		h.logger.WarnContext(ctx, "delete tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetTournamentOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournamentOverview")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	overview, err := h.tournamentService.GetOverview(ctx, tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, overviewToDTO(ctx, overview))
}

func (h *Handler) GetTournamentStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournamentStandings")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))

	phase := tournament.Phase(strings.TrimSpace(r.URL.Query().Get("phase")))
	if phase == "" {
		phase = tournament.PhaseRoundRobin
	}
	switch phase {
	case tournament.PhaseRoundRobin, tournament.PhaseKnockout, tournament.PhaseAll:
	default:
		writeError(ctx, w, fmt.Errorf("%w: unknown phase %q", usecase.ErrInvalidInput, phase))
		return
	}

	var groupIndex *int
	if raw := strings.TrimSpace(r.URL.Query().Get("group")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: group must be a non-negative integer", usecase.ErrInvalidInput))
			return
		}
		groupIndex = &parsed
	}

	rows, err := h.tournamentService.Standings(ctx, tournamentID, phase, groupIndex)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dtos := make([]standingsRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, standingsRowToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func (h *Handler) GetTournamentLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournamentLeaderboard")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	rows, err := h.tournamentService.Leaderboard(ctx, tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dtos := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, leaderboardRowToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

// StartTournamentMatch takes a scheduled pairing live: the tournament side
// resolves players and format, the match side spins up the engine and
// reports back through the result sink.
func (h *Handler) StartTournamentMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartTournamentMatch")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	input, err := h.tournamentService.MatchSetup(ctx, tournamentID, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.matchService.Start(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "start tournament match failed", "tournament_id", tournamentID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchStateToDTO(ctx, state))
}

// RecordTournamentResult accepts an externally scored result, for matches
// played without the live engine (paper scoring, imports).
func (h *Handler) RecordTournamentResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordTournamentResult")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	var req recordResultRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	lines := make([]tournament.PlayerLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, tournament.PlayerLine{
			PlayerID:         line.PlayerID,
			Name:             line.Name,
			IsWinner:         line.IsWinner,
			Average:          line.Average,
			CheckoutRate:     line.CheckoutRate,
			CheckoutAttempts: line.CheckoutAttempts,
			CheckoutHits:     line.CheckoutHits,
			DoubleDarts:      line.DoubleDarts,
			Count100Plus:     line.Count100Plus,
			Count140Plus:     line.Count140Plus,
			Count180:         line.Count180,
			TotalDarts:       line.TotalDarts,
			TotalPoints:      line.TotalPoints,
			HighestCheckout:  line.HighestCheckout,
			LegsWon:          line.LegsWon,
			LegsLost:         line.LegsLost,
		})
	}

	result := tournament.MatchResult{
		MatchID:      matchID,
		TournamentID: tournamentID,
		Lines:        lines,
	}
	if result.Winner() == "" {
		writeError(ctx, w, fmt.Errorf("%w: result must flag exactly one winner line", usecase.ErrInvalidInput))
		return
	}

	if err := h.tournamentService.RecordResult(ctx, tournamentID, result); err != nil {
		h.logger.WarnContext(ctx, "record result failed", "tournament_id", tournamentID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(result))
}

func (h *Handler) RevertTournamentResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RevertTournamentResult")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	if err := h.tournamentService.RevertResult(ctx, tournamentID, matchID); err != nil {
		h.logger.WarnContext(ctx, "revert result failed", "tournament_id", tournamentID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "reverted"})
}

// RunRecomputeJob replays a tournament's archived matches and rebuilds its
// derived records. Internal job endpoint.
func (h *Handler) RunRecomputeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeJob")
	defer span.End()

	var req recomputeRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.recomputeService.Recompute(ctx, usecase.RecomputeInput{
		TournamentID: req.TournamentID,
		MaxWorkers:   req.MaxWorkers,
		DryRun:       req.DryRun,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "recompute job failed", "tournament_id", req.TournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
