package mocks

import (
	"cartstore/internal/models"
	"context"

	"github.com/stretchr/testify/mock"
)

type Catalog struct {
	mock.Mock
}

func (m *Catalog) GetProduct(ctx context.Context, id int) (models.Product, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Product), args.Bool(1), args.Error(2)
}
