package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/usecase"
)

type matchPlayerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}

type matchFormatRequest struct {
	Type       string `json:"type" validate:"omitempty,oneof=first_to best_of"`
	LegsToWin  int    `json:"legsToWin" validate:"min=0"`
	BestOf     int    `json:"bestOf" validate:"min=0"`
	UseSets    bool   `json:"useSets"`
	SetsToWin  int    `json:"setsToWin" validate:"min=0"`
	LegsPerSet int    `json:"legsPerSet" validate:"min=0"`
}

func (req *matchFormatRequest) toDomain() *game.MatchFormat {
	if req == nil {
		return nil
	}
	return &game.MatchFormat{
		Type:       game.FormatType(req.Type),
		LegsToWin:  req.LegsToWin,
		BestOf:     req.BestOf,
		UseSets:    req.UseSets,
		SetsToWin:  req.SetsToWin,
		LegsPerSet: req.LegsPerSet,
	}
}

type startMatchRequest struct {
	Players       []matchPlayerRequest `json:"players" validate:"required,min=2,dive"`
	StartingScore int                  `json:"startingScore" validate:"min=0"`
	DoubleOut     bool                 `json:"doubleOut"`
	Format        *matchFormatRequest  `json:"format"`
	StarterID     string               `json:"starterId"`
}

type visitRequest struct {
	Points int `json:"points" validate:"min=0,max=180"`
}

type confirmCheckoutRequest struct {
	DoubleHit bool `json:"doubleHit"`
}

func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartMatch")
	defer span.End()

	var req startMatchRequest
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

	players := make([]game.Player, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, game.Player{ID: p.ID, Name: p.Name})
	}

	state, err := h.matchService.Start(ctx, usecase.StartMatchInput{
		Players:       players,
		StartingScore: req.StartingScore,
		DoubleOut:     req.DoubleOut,
		Format:        req.Format.toDomain(),
		StarterID:     req.StarterID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "start match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchStateToDTO(ctx, state))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	state, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchStateToDTO(ctx, state))
}

func (h *Handler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordVisit")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req visitRequest
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

	out, err := h.matchService.RecordVisit(ctx, matchID, req.Points)
	if err != nil {
		h.logger.WarnContext(ctx, "record visit failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, visitToDTO(ctx, out))
}

func (h *Handler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConfirmCheckout")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req confirmCheckoutRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	out, err := h.matchService.ConfirmCheckout(ctx, matchID, req.DoubleHit)
	if err != nil {
		h.logger.WarnContext(ctx, "confirm checkout failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, visitToDTO(ctx, out))
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelCheckout")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	state, err := h.matchService.CancelCheckout(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchStateToDTO(ctx, state))
}

func (h *Handler) UndoVisit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UndoVisit")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	out, err := h.matchService.Undo(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "undo visit failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, undoToDTO(ctx, out))
}

func (h *Handler) AbandonMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AbandonMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.matchService.Abandon(ctx, matchID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func (h *Handler) ListMatchSummaries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchSummaries")
	defer span.End()

	summaries, err := h.matchService.ListSummaries(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]matchSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, summaryToDTO(ctx, s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
