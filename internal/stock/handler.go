package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockpilot/stockpilot/internal/platform/httpx"
	"github.com/stockpilot/stockpilot/internal/shared"
)

// Handler serves product stock endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches stock routes under /products.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}/stock", h.AdjustStock)
	r.Get("/{id}/adjustments", h.Adjustments)
}

// AdjustStockRequest is the PATCH /products/{id}/stock payload.
type AdjustStockRequest struct {
	WarehouseID uuid.UUID `json:"warehouseId" validate:"required"`
	Adjustment  int64     `json:"adjustment" validate:"required"`
	Reason      string    `json:"reason,omitempty" validate:"max=255"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ProductsWithStock(r.Context())
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, products)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	product, err := h.service.ProductDetail(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, product)
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var req AdjustStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "warehouseId and numeric adjustment are required")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	newQuantity, err := h.service.AdjustStock(r.Context(), AdjustmentInput{
		ProductID:   productID,
		WarehouseID: req.WarehouseID,
		Delta:       req.Adjustment,
		Reason:      req.Reason,
		Actor:       shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"newQuantity": newQuantity})
}

func (h *Handler) Adjustments(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	adjustments, err := h.service.ListAdjustments(r.Context(), productID, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if adjustments == nil {
		adjustments = []Adjustment{}
	}
	httpx.OK(w, adjustments)
}
