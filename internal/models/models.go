package models

import (
	databaseerrors "cartstore/internal/database"
	"encoding/json"
	"fmt"
)

// Cart is one row of the carts table. Contents holds the raw JSON array of
// product ids exactly as stored.
type Cart struct {
	Id       int     `json:"id" db:"id"`
	Username string  `json:"username" db:"username"`
	Contents string  `json:"contents" db:"contents"`
	Cost     float64 `json:"cost" db:"cost"`
}

type Product struct {
	Id          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// EncodeContents serializes product ids for the contents column. A nil slice
// encodes as "[]".
func EncodeContents(ids []int) (string, error) {
	if ids == nil {
		ids = []int{}
	}

	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("models.EncodeContents: %w", err)
	}

	return string(b), nil
}

// DecodeContents parses a contents column. Empty input means an empty cart.
func DecodeContents(raw string) ([]int, error) {
	ids := make([]int, 0)
	if raw == "" {
		return ids, nil
	}

	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", databaseerrors.ErrMalformedContents, err)
	}
	if ids == nil {
		ids = make([]int, 0)
	}

	return ids, nil
}
