package application

import (
	"context"
	"errors"

	"github.com/Apurer/go-sales-order-api/internal/domains/customers/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/customers/ports"
)

// Service exposes customer bounded context use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	if err := customer.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, customer)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ports.ErrNotFound
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.List(ctx)
}
