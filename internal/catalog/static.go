package catalog

import (
	"cartstore/internal/models"
	"cartstore/pkg/config"
	"context"
)

// Static is a read-only, in-memory product catalog. It is safe for concurrent
// use because it is never modified after construction.
type Static struct {
	products map[int]models.Product
}

// NewStatic indexes products by id. A later product replaces an earlier one
// with the same id.
func NewStatic(products []models.Product) *Static {
	byId := make(map[int]models.Product, len(products))
	for _, p := range products {
		byId[p.Id] = p
	}

	return &Static{products: byId}
}

func FromConfig(cfg config.CatalogConfig) *Static {
	products := make([]models.Product, 0, len(cfg.Products))
	for _, p := range cfg.Products {
		products = append(products, models.Product{
			Id:          p.Id,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
		})
	}

	return NewStatic(products)
}

func (s *Static) GetProduct(ctx context.Context, id int) (models.Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, false, err
	}

	p, ok := s.products[id]
	return p, ok, nil
}

func (s *Static) Len() int {
	return len(s.products)
}
