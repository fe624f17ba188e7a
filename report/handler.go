package report

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/reports"
)

// Handler manages report endpoints.
type Handler struct {
	client  *Client
	profile reports.BusinessProfile
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler creates a report handler.
func NewHandler(client *Client, profile reports.BusinessProfile, logger *slog.Logger) *Handler {
	return &Handler{client: client, profile: profile, logger: logger, now: time.Now}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/forms/2550m/blank", h.blank2550M)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// blank2550M prints an empty declaration for the registered business, for
// manual filing. The period defaults to the current month.
func (h *Handler) blank2550M(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	period := reports.MonthPeriod(now.Year(), now.Month())
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := reports.ParsePeriod(raw)
		if err != nil || !parsed.IsMonthly() {
			http.Error(w, "period must be YYYY-MM", http.StatusBadRequest)
			return
		}
		period = parsed
	}
	form, err := reports.GenerateForm2550M(h.profile, nil, period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	html, err := reports.RenderForm2550MHTML(form)
	if err != nil {
		h.logger.Error("render blank 2550M html", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render blank 2550M pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=2550M-"+form.Period+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
