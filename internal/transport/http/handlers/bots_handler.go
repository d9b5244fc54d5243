package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/botlist/internal/transport/http/errors"
)

type Guard interface {
	Authorize(ctx context.Context, callerID string) error
}

type OwnerBots interface {
	ListByOwner(ctx context.Context, userID string) ([]model.Bot, error)
}

type BotsHandler struct {
	guard Guard
	bots  OwnerBots
}

func NewBotsHandler(guard Guard, bots OwnerBots) *BotsHandler {
	return &BotsHandler{guard: guard, bots: bots}
}

// ListByOwner shows staff the bots a user owns.
func (h *BotsHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.guard == nil || h.bots == nil {
		writeInternal(w, "BOTS_UNAVAILABLE", "bot listing is unavailable")
		return
	}
	if err := h.guard.Authorize(r.Context(), caller); err != nil {
		if errors.Is(err, rpc.ErrUnauthorized) {
			writeForbidden(w, "FORBIDDEN", "staff role required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to resolve role")
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "user_id"))
	if _, err := strconv.ParseInt(userID, 10, 64); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "user_id must be numeric")
		return
	}

	bots, err := h.bots.ListByOwner(r.Context(), userID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list bots")
		return
	}

	items := make([]dto.BotSummary, 0, len(bots))
	for _, bot := range bots {
		item := dto.BotSummary{
			BotID:      bot.BotID,
			Type:       string(bot.Type),
			Votes:      bot.Votes,
			VoteBanned: bot.VoteBanned,
			Premium:    bot.Premium,
		}
		if expiry, ok := bot.PremiumExpiry(); ok {
			item.PremiumExpiry = &expiry
		}
		items = append(items, item)
	}

	httperrors.Write(w, http.StatusOK, dto.OwnerBotsResponse{UserID: userID, Items: items})
}
