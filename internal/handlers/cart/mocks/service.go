package mocks

import (
	"cartstore/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

func (m *Service) GetCartItems(ctx context.Context, username string) ([]models.Product, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]models.Product), args.Error(1)
}
func (m *Service) AddProductToCart(ctx context.Context, username string, productId int) error {
	args := m.Called(ctx, username, productId)
	return args.Error(0)
}
func (m *Service) RemoveProductFromCart(ctx context.Context, username string, productId int) error {
	args := m.Called(ctx, username, productId)
	return args.Error(0)
}
func (m *Service) ClearCart(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}
