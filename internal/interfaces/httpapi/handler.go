package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/oneeighty-app/oneeighty/internal/platform/logging"
	"github.com/oneeighty-app/oneeighty/internal/usecase"
)

type Handler struct {
	checkoutService   *usecase.CheckoutService
	matchService      *usecase.MatchService
	tournamentService *usecase.TournamentService
	recomputeService  *usecase.RecomputeService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	checkoutService *usecase.CheckoutService,
	matchService *usecase.MatchService,
	tournamentService *usecase.TournamentService,
	recomputeService *usecase.RecomputeService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		checkoutService:   checkoutService,
		matchService:      matchService,
		tournamentService: tournamentService,
		recomputeService:  recomputeService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SuggestCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SuggestCheckout")
	defer span.End()

	target, err := strconv.Atoi(r.PathValue("target"))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: target must be an integer", usecase.ErrInvalidInput))
		return
	}

	suggestion, err := h.checkoutService.Suggest(ctx, target)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, checkoutSuggestionDTO{
		Target:   suggestion.Target,
		Darts:    suggestion.Darts,
		Possible: suggestion.Possible,
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
