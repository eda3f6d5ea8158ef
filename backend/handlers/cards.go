package handlers

import (
	"log/slog"
	"net/http"

	"cards-app/backend/middleware"
	"cards-app/backend/models"
	"cards-app/backend/respond"
)

const dateLayout = "2006-01-02"

type cardResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Date        string `json:"date"`
}

func toCardResponse(c models.Card) cardResponse {
	return cardResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Priority:    c.Priority,
		Date:        c.Date.Format(dateLayout),
	}
}

// ListCards returns every card, priority descending then title, to admins.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	cards, err := h.Store.ListCards(r.Context())
	if err != nil {
		slog.Error("list cards failed", "source", "cards", "error", err.Error(), "request_id", middleware.RequestID(r.Context()))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	respond.JSON(w, http.StatusOK, out)
}
