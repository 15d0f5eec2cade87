package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-sales-order-api/internal/domains/catalog/application"
	"github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/catalog/ports"
	sharederrors "github.com/Apurer/go-sales-order-api/internal/shared/errors"
)

// Handler exposes the catalog use cases over HTTP.
type Handler struct {
	service   *application.Service
	responder *sharederrors.Responder
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{
		service:   service,
		responder: sharederrors.NewResponder("", mapCatalogError),
	}
}

// Register mounts the catalog routes on the given group.
func (h *Handler) Register(group *gin.RouterGroup) {
	group.POST("/products", h.RegisterProduct)
	group.GET("/products", h.ListProducts)
	group.GET("/products/:id", h.GetProduct)
}

// Product is the transport-layer shape of a catalog entry.
type Product struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Tags      []string `json:"tags,omitempty"`
	UnitPrice string   `json:"unitPrice"`
	Stock     int64    `json:"stock"`
}

// Post /v1/products
// Register a catalog entry
func (h *Handler) RegisterProduct(c *gin.Context) {
	var payload Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	price, err := decimal.NewFromString(payload.UnitPrice)
	if err != nil {
		h.responder.BadRequest(c, "unitPrice must be a decimal number")
		return
	}
	product, err := domain.NewProduct(payload.ID, payload.Name, payload.Tags, price, payload.Stock)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	saved, err := h.service.RegisterProduct(c.Request.Context(), product)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromDomain(saved))
}

// Get /v1/products/:id
// Fetch a catalog entry
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromDomain(product))
}

// Get /v1/products
// List catalog entries
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.service.List(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	result := make([]Product, 0, len(products))
	for _, product := range products {
		result = append(result, fromDomain(product))
	}
	c.JSON(http.StatusOK, result)
}

func fromDomain(product *domain.Product) Product {
	if product == nil {
		return Product{}
	}
	return Product{
		ID:        product.ID,
		Name:      product.Name,
		Tags:      product.Tags,
		UnitPrice: product.UnitPrice.StringFixed(2),
		Stock:     product.Stock,
	}
}

func mapCatalogError(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return sharederrors.NewNotFoundProblem("product", ""), true
	case errors.Is(err, application.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyID),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrNegativeStock):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return sharederrors.ProblemDetail{}, false
	}
}
