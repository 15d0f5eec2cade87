package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-sales-order-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
	customersmemory "github.com/Apurer/go-sales-order-api/internal/domains/customers/adapters/memory"
	customersdomain "github.com/Apurer/go-sales-order-api/internal/domains/customers/domain"
	ordersmemory "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/memory"
	ordersworkflows "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-sales-order-api/internal/domains/orders/application"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	customers := customersmemory.NewRepository()
	catalog := catalogmemory.NewRepository()
	orders := ordersmemory.NewRepository()

	customer, err := customersdomain.NewCustomer("C1", "Ada Lovelace", "ada@example.com")
	require.NoError(t, err)
	_, err = customers.Save(context.Background(), customer)
	require.NoError(t, err)

	product, err := catalogdomain.NewProduct("P1", "Widget", []string{"sale"}, decimal.RequireFromString("10.50"), 5)
	require.NoError(t, err)
	_, err = catalog.Save(context.Background(), product)
	require.NoError(t, err)

	service := ordersapp.NewService(orders, customers, catalog, ordersmemory.NewAtomic(),
		ordersapp.WithIdempotencyStore(ordersmemory.NewIdempotencyStore()))

	router := gin.New()
	NewHandler(service, ordersworkflows.NewInlineOrderWorkflows(service)).Register(router.Group("/v1"))
	return router
}

func postOrder(t *testing.T, router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderHTTP_Success(t *testing.T) {
	router := newTestRouter(t)

	rec := postOrder(t, router, `{"customerId":"C1","lines":[{"productId":"P1","quantity":3}]}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.ID)
	require.Equal(t, "C1", payload.CustomerID)
	require.Len(t, payload.Lines, 1)
	require.Equal(t, "10.50", payload.Lines[0].UnitPrice)
	require.Equal(t, "31.50", payload.Total)
}

func TestCreateOrderHTTP_UnknownCustomer(t *testing.T) {
	router := newTestRouter(t)

	rec := postOrder(t, router, `{"customerId":"C404","lines":[{"productId":"P1","quantity":1}]}`, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestCreateOrderHTTP_UnknownProduct(t *testing.T) {
	router := newTestRouter(t)

	rec := postOrder(t, router, `{"customerId":"C1","lines":[{"productId":"P9","quantity":1}]}`, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "P9")
}

func TestCreateOrderHTTP_InsufficientStock(t *testing.T) {
	router := newTestRouter(t)

	rec := postOrder(t, router, `{"customerId":"C1","lines":[{"productId":"P1","quantity":9}]}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "insufficient-stock")
}

func TestCreateOrderHTTP_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	rec := postOrder(t, router, `{"lines":[]}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderHTTP_IdempotencyKeyReplay(t *testing.T) {
	router := newTestRouter(t)
	body := `{"customerId":"C1","lines":[{"productId":"P1","quantity":2}]}`
	headers := map[string]string{IdempotencyKeyHeader: "key-1"}

	first := postOrder(t, router, body, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	second := postOrder(t, router, body, headers)
	require.Equal(t, http.StatusCreated, second.Code)

	var a, b Order
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	require.Equal(t, a.ID, b.ID)

	conflicting := postOrder(t, router, `{"customerId":"C1","lines":[{"productId":"P1","quantity":3}]}`, headers)
	require.Equal(t, http.StatusConflict, conflicting.Code)
}

func TestGetOrderHTTP(t *testing.T) {
	router := newTestRouter(t)

	created := postOrder(t, router, `{"customerId":"C1","lines":[{"productId":"P1","quantity":1}]}`, nil)
	require.Equal(t, http.StatusCreated, created.Code)
	var payload Order
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &payload))

	req := httptest.NewRequest(http.MethodGet, "/v1/orders/"+payload.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	missing := httptest.NewRequest(http.MethodGet, "/v1/orders/nope", nil)
	recMissing := httptest.NewRecorder()
	router.ServeHTTP(recMissing, missing)
	require.Equal(t, http.StatusNotFound, recMissing.Code)
}

func TestListOrdersHTTP_FilterByCustomer(t *testing.T) {
	router := newTestRouter(t)

	rec := postOrder(t, router, `{"customerId":"C1","lines":[{"productId":"P1","quantity":1}]}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/orders?customerId=C1", nil)
	recList := httptest.NewRecorder()
	router.ServeHTTP(recList, req)
	require.Equal(t, http.StatusOK, recList.Code)

	var orders []Order
	require.NoError(t, json.Unmarshal(recList.Body.Bytes(), &orders))
	require.Len(t, orders, 1)

	reqOther := httptest.NewRequest(http.MethodGet, "/v1/orders?customerId=C2", nil)
	recOther := httptest.NewRecorder()
	router.ServeHTTP(recOther, reqOther)
	require.Equal(t, http.StatusOK, recOther.Code)
	var none []Order
	require.NoError(t, json.Unmarshal(recOther.Body.Bytes(), &none))
	require.Empty(t, none)
}
