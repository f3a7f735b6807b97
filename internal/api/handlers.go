package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/storefront-scraper/internal/models"
)

const (
	ServiceName    = "Storefront Product Scraper API"
	ServiceVersion = "1.0.0"

	pendingWarnThreshold    = 1000
	deadLetterFailThreshold = 100
)

// Catalog reads products with their latest enrichment attached.
type Catalog interface {
	FindAll(ctx context.Context) ([]*models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

// Backlog reports outbox health; *database.Relay implements it.
type Backlog interface {
	Backlog(ctx context.Context) (pending, deadLetter int64, err error)
}

type Handlers struct {
	catalog Catalog
	backlog Backlog
	logger  *slog.Logger
}

// NewHandlers accepts a nil backlog when no outbox relay is running.
func NewHandlers(catalog Catalog, backlog Backlog, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		catalog: catalog,
		backlog: backlog,
		logger:  logger.With("component", "api"),
	}
}

// productResponse adds the derived discount flag to the stored product.
type productResponse struct {
	*models.Product
	HasDiscount bool `json:"has_discount"`
}

func toResponse(p *models.Product) productResponse {
	return productResponse{Product: p, HasDiscount: p.HasDiscount()}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

// Health reports "healthy" unless the outbox backlog crosses its thresholds.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{"status": "healthy"}
	status := http.StatusOK

	if h.backlog != nil {
		pending, deadLetter, err := h.backlog.Backlog(r.Context())
		if err != nil {
			h.logger.Warn("failed to read outbox backlog", "error", err)
		} else {
			health["outbox"] = map[string]int64{
				"pending":     pending,
				"dead_letter": deadLetter,
			}
			if pending > pendingWarnThreshold {
				health["status"] = "warning"
				health["message"] = "High number of pending outbox events"
			}
			if deadLetter > deadLetterFailThreshold {
				health["status"] = "error"
				health["message"] = "High number of dead letter events"
				status = http.StatusServiceUnavailable
			}
		}
	}

	h.respondJSON(w, status, health)
}

// ListProducts returns every product, newest first.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.FindAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.respondError(w, http.StatusInternalServerError, "query_error", err.Error())
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toResponse(p))
	}

	h.logger.Info("products listed", "count", len(resp))
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_id", "product id must be an integer")
		return
	}

	product, err := h.catalog.FindByID(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		h.logger.Info("product not found", "product_id", id)
		h.respondError(w, http.StatusNotFound, "not_found", fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	if err != nil {
		h.logger.Error("failed to get product", "product_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "query_error", err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, toResponse(product))
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, kind, message string) {
	h.respondJSON(w, status, errorResponse{Error: kind, Message: message})
}
