package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "staypulse/internal/errors"
	"staypulse/internal/services"
	"staypulse/pkg/contracts/domain"
)

// ReportsHandler exposes each market report as a JSON endpoint.
type ReportsHandler struct {
	service  *services.ReportService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(service *services.ReportService, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{
		service:  service,
		logger:   logger,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the report routes.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.GetBundle)
		r.Get("/city-price-rank", h.GetCityPriceRanks)
		r.Get("/top-property-types", h.GetTopPropertyTypes)
		r.Get("/rare-property-types", h.GetRarestPropertyTypes)
		r.Get("/room-type-delta", h.GetRoomTypeDelta)
		r.Get("/score-comparison", h.GetScoreComparison)
		r.Get("/price-tier-scores", h.GetPriceTierScores)
		r.Get("/market-competitiveness", h.GetCompetitiveness)
		r.Get("/verification-impact", h.GetVerificationImpact)
	})
}

// rankQuery holds the optional query parameters of the ranking endpoints.
type rankQuery struct {
	Limit int `validate:"omitempty,min=1,max=50"`
}

// parseRankQuery reads and validates the limit query parameter.
func (h *ReportsHandler) parseRankQuery(r *http.Request) (rankQuery, *apierrors.APIError) {
	q := rankQuery{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return q, apierrors.ErrValidation("limit", "must be an integer")
		}
		q.Limit = limit
	}
	if err := h.validate.Struct(q); err != nil {
		return q, apierrors.ErrValidation("limit", "must be between 1 and 50")
	}
	return q, nil
}

// respond writes the payload, or a structured error when computation
// failed.
func (h *ReportsHandler) respond(w http.ResponseWriter, r *http.Request, payload interface{}, err error) {
	if err != nil {
		h.logger.ErrorContext(r.Context(), "report computation failed",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrInternalServer)
		return
	}
	render.JSON(w, r, payload)
}

// GetBundle returns the full report bundle.
func (h *ReportsHandler) GetBundle(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	h.respond(w, r, report, err)
}

// GetCityPriceRanks returns the city price ranking.
func (h *ReportsHandler) GetCityPriceRanks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.CityPriceRanks(r.Context())
	h.respond(w, r, rows, err)
}

// GetTopPropertyTypes returns the most common property types per city.
func (h *ReportsHandler) GetTopPropertyTypes(w http.ResponseWriter, r *http.Request) {
	q, apiErr := h.parseRankQuery(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	rows, err := h.service.TopPropertyTypes(r.Context())
	h.respond(w, r, filterByRank(rows, q.Limit), err)
}

// GetRarestPropertyTypes returns the rarest property types per city.
func (h *ReportsHandler) GetRarestPropertyTypes(w http.ResponseWriter, r *http.Request) {
	q, apiErr := h.parseRankQuery(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	rows, err := h.service.RarestPropertyTypes(r.Context())
	h.respond(w, r, filterByRank(rows, q.Limit), err)
}

// GetRoomTypeDelta returns the entire vs room price delta.
func (h *ReportsHandler) GetRoomTypeDelta(w http.ResponseWriter, r *http.Request) {
	row, err := h.service.RoomTypeDelta(r.Context())
	h.respond(w, r, row, err)
}

// GetScoreComparison returns the fixed-category score comparison.
func (h *ReportsHandler) GetScoreComparison(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ScoreComparison(r.Context())
	h.respond(w, r, rows, err)
}

// GetPriceTierScores returns the per-city price tier comparison.
func (h *ReportsHandler) GetPriceTierScores(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.PriceTierScores(r.Context())
	h.respond(w, r, rows, err)
}

// GetCompetitiveness returns the market competitiveness report.
func (h *ReportsHandler) GetCompetitiveness(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Competitiveness(r.Context())
	h.respond(w, r, rows, err)
}

// GetVerificationImpact returns the verification impact comparison.
func (h *ReportsHandler) GetVerificationImpact(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.VerificationImpact(r.Context())
	h.respond(w, r, rows, err)
}

// filterByRank keeps rows at or below the requested rank cutoff. Zero
// means no extra cutoff beyond what the engine already applied.
func filterByRank(rows []domain.PropertyTypeRank, limit int) []domain.PropertyTypeRank {
	if limit <= 0 {
		return rows
	}
	out := make([]domain.PropertyTypeRank, 0, len(rows))
	for _, r := range rows {
		if r.Rank <= limit {
			out = append(out, r)
		}
	}
	return out
}
