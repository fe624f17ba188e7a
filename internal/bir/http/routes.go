package birhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// pdfRequestsPerMinute bounds the rendering endpoints per client IP.
const pdfRequestsPerMinute = 20

// MountRoutes registers the BIR endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(pdfRequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Post("/vat", h.handleVAT)
	r.Post("/withholding", h.handleWithholding)
	r.Post("/employee-tax", h.handleEmployeeTax)
	r.Post("/contributions", h.handleContributions)
	r.Post("/identifiers/validate", h.handleIdentifiers)
	r.Get("/format", h.handleFormat)

	r.Post("/or-numbers", h.handleIssueORNumber)
	r.Post("/receipts/validate", h.handleValidateReceipt)
	r.Post("/journal", h.handleJournal)
	r.Post("/reports", h.handleReport)
	r.Post("/forms/2550m", h.handleForm2550M)
	r.Post("/alphalist", h.handleAlphalist)

	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Post("/receipts/pdf", h.handleReceiptPDF)
		gr.Post("/forms/2550m/pdf", h.handleForm2550MPDF)
	})
}
