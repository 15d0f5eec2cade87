package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	customersmemory "github.com/Apurer/go-sales-order-api/internal/domains/customers/adapters/memory"
	"github.com/Apurer/go-sales-order-api/internal/domains/customers/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/customers/ports"
)

func TestCreateCustomer_Success(t *testing.T) {
	svc := NewService(customersmemory.NewRepository())

	created, err := svc.CreateCustomer(context.Background(), &domain.Customer{ID: "C1", Name: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	require.Equal(t, "C1", created.ID)

	fetched, err := svc.GetByID(context.Background(), "C1")
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", fetched.Name)
}

func TestCreateCustomer_InvalidEmail(t *testing.T) {
	svc := NewService(customersmemory.NewRepository())

	_, err := svc.CreateCustomer(context.Background(), &domain.Customer{ID: "C1", Name: "Ada", Email: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestGetByID_Unknown(t *testing.T) {
	svc := NewService(customersmemory.NewRepository())

	_, err := svc.GetByID(context.Background(), "C404")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeleteCustomer(t *testing.T) {
	svc := NewService(customersmemory.NewRepository())

	_, err := svc.CreateCustomer(context.Background(), &domain.Customer{ID: "C1", Name: "Ada"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), "C1"))

	_, err = svc.GetByID(context.Background(), "C1")
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), "C1"), ports.ErrNotFound)
}
