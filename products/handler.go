package products

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/httpx"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service ProductService
	gate    func(http.Handler) http.Handler
}

// NewProductHandler creates a ProductHandler. gate guards the mutating routes.
func NewProductHandler(service ProductService, gate func(http.Handler) http.Handler) *ProductHandler {
	return &ProductHandler{service: service, gate: gate}
}

// RegisterRoutes registers the product routes on a router mounted at /api/products.
func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.listProducts)
	router.Get("/{id}", h.getProduct)

	router.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/", h.createProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
}

// listProducts godoc
// @Summary List products
// @Description Lists products, optionally filtered by category substring and capped by limit.
// @Tags Products
// @Produce json
// @Param category query string false "Case-insensitive category substring"
// @Param limit query int false "Maximum number of products returned"
// @Success 200 {object} products.ListResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid limit"
// @Router /api/products [get]
func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	f := Filter{Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpx.WriteError(w, r, apperror.NewValidationError("invalid query", []apperror.FieldError{
				{Field: "limit", Message: "must be a non-negative integer"},
			}))
			return
		}
		f.Limit = limit
	}

	items, total, err := h.service.List(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListResponse{Success: true, Data: items, Count: len(items), Total: total})
}

// getProduct godoc
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} products.ProductResponse
// @Failure 404 {object} apperror.ErrorResponse "Product not found"
// @Router /api/products/{id} [get]
func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ProductResponse{Success: true, Data: p})
}

// createProduct godoc
// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body products.CreateProductRequest true "New product"
// @Success 201 {object} products.ProductResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /api/products [post]
func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	actor, _ := auth.IdentityFromContext(r.Context())

	p, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, ProductResponse{Success: true, Data: p, Message: "product created"})
}

// updateProduct godoc
// @Summary Update product
// @Description Partially updates a product; absent fields are left unchanged.
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param body body products.UpdateProductRequest true "Fields to change"
// @Success 200 {object} products.ProductResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "Product not found"
// @Router /api/products/{id} [put]
func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	actor, _ := auth.IdentityFromContext(r.Context())

	p, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ProductResponse{Success: true, Data: p, Message: "product updated"})
}

// deleteProduct godoc
// @Summary Delete product
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} products.MessageResponse
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "Product not found"
// @Router /api/products/{id} [delete]
func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	actor, _ := auth.IdentityFromContext(r.Context())

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "product deleted"})
}

// productID parses the {id} URL parameter. An unparsable ID cannot name a
// product, so it is reported as not found.
func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, r, apperror.NewNotFoundError(apperror.CodeProductNotFound, "product not found"))
		return 0, false
	}
	return id, true
}
