package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-sales-order-api/internal/domains/customers/application"
	"github.com/Apurer/go-sales-order-api/internal/domains/customers/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/customers/ports"
	sharederrors "github.com/Apurer/go-sales-order-api/internal/shared/errors"
)

// Handler exposes the customer use cases over HTTP.
type Handler struct {
	service   *application.Service
	responder *sharederrors.Responder
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{
		service:   service,
		responder: sharederrors.NewResponder("", mapCustomerError),
	}
}

// Register mounts the customer routes on the given group.
func (h *Handler) Register(group *gin.RouterGroup) {
	group.POST("/customers", h.CreateCustomer)
	group.GET("/customers", h.ListCustomers)
	group.GET("/customers/:id", h.GetCustomer)
	group.DELETE("/customers/:id", h.DeleteCustomer)
}

// Customer is the transport-layer shape of a customer.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Post /v1/customers
// Register a customer
func (h *Handler) CreateCustomer(c *gin.Context) {
	var payload Customer
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	customer, err := domain.NewCustomer(payload.ID, payload.Name, payload.Email)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	saved, err := h.service.CreateCustomer(c.Request.Context(), customer)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromDomain(saved))
}

// Get /v1/customers/:id
// Fetch a customer by id
func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromDomain(customer))
}

// Get /v1/customers
// List customers
func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.service.List(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	result := make([]Customer, 0, len(customers))
	for _, customer := range customers {
		result = append(result, fromDomain(customer))
	}
	c.JSON(http.StatusOK, result)
}

// Delete /v1/customers/:id
// Remove a customer
func (h *Handler) DeleteCustomer(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func fromDomain(customer *domain.Customer) Customer {
	if customer == nil {
		return Customer{}
	}
	return Customer{ID: customer.ID, Name: customer.Name, Email: customer.Email}
}

func mapCustomerError(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return sharederrors.NewNotFoundProblem("customer", ""), true
	case errors.Is(err, application.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyID),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidEmail):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return sharederrors.ProblemDetail{}, false
	}
}
