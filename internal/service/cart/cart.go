package cartservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	databaseerrors "cartstore/internal/database"
	"cartstore/internal/models"
	serviceerrors "cartstore/internal/service"
	"cartstore/pkg/lib/logger/sl"

	"golang.org/x/sync/singleflight"
)

type CartStorage interface {
	GetCart(ctx context.Context, username string) ([]models.Cart, error)
	AddToCart(ctx context.Context, username string, productId int) error
	RemoveFromCart(ctx context.Context, username string, productId int) error
	DeleteCart(ctx context.Context, username string) error
}

// ProductCatalog resolves product ids. ok is false when the catalog has no
// product with that id.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id int) (product models.Product, ok bool, err error)
}

type CartService struct {
	log     *slog.Logger
	storage CartStorage
	catalog ProductCatalog
	reads   singleflight.Group
}

func New(log *slog.Logger, storage CartStorage, catalog ProductCatalog) *CartService {
	return &CartService{
		log:     log,
		storage: storage,
		catalog: catalog,
	}
}

// GetCartItems returns the products in the user's cart in stored order.
// Ids unknown to the catalog are skipped. A row whose contents cannot be
// decoded is logged and skipped rather than failing the call.
func (c *CartService) GetCartItems(ctx context.Context, username string) ([]models.Product, error) {
	const op = "service.cart.GetCartItems"
	log := c.log.With("op", op, "username", username)

	if err := ctx.Err(); err != nil {
		return nil, translate(log, op, "unexpected error", err)
	}

	// The shared read outlives any single caller; each caller only waits on
	// its own ctx.
	ch := c.reads.DoChan(username, func() (any, error) {
		return c.storage.GetCart(context.WithoutCancel(ctx), username)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, translate(log, op, "unexpected error", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, translate(log, op, "Failed to get cart", res.Err)
	}
	carts := res.Val.([]models.Cart)

	items := make([]models.Product, 0)
	for _, cart := range carts {
		ids, err := models.DecodeContents(cart.Contents)
		if err != nil {
			log.Error("Error parsing cart contents", slog.Int("cart_id", cart.Id), sl.Err(err))
			continue
		}

		for _, id := range ids {
			product, ok, err := c.catalog.GetProduct(ctx, id)
			if err != nil {
				return nil, translate(log.With("product_id", id), op, "Failed to look up product", err)
			}
			if !ok {
				log.Debug("Product not in catalog", slog.Int("product_id", id))
				continue
			}
			items = append(items, product)
		}
	}

	return items, nil
}

func (c *CartService) AddProductToCart(ctx context.Context, username string, productId int) error {
	const op = "service.cart.AddProductToCart"
	log := c.log.With("op", op, "username", username, "product_id", productId)

	if err := ctx.Err(); err != nil {
		return translate(log, op, "unexpected error", err)
	}

	if err := c.storage.AddToCart(ctx, username, productId); err != nil {
		return translate(log, op, "Failed to add product to cart", err)
	}

	c.reads.Forget(username)

	return nil
}

func (c *CartService) RemoveProductFromCart(ctx context.Context, username string, productId int) error {
	const op = "service.cart.RemoveProductFromCart"
	log := c.log.With("op", op, "username", username, "product_id", productId)

	if err := ctx.Err(); err != nil {
		return translate(log, op, "unexpected error", err)
	}

	if err := c.storage.RemoveFromCart(ctx, username, productId); err != nil {
		return translate(log, op, "Failed to remove product from cart", err)
	}

	c.reads.Forget(username)

	return nil
}

func (c *CartService) ClearCart(ctx context.Context, username string) error {
	const op = "service.cart.ClearCart"
	log := c.log.With("op", op, "username", username)

	if err := ctx.Err(); err != nil {
		return translate(log, op, "unexpected error", err)
	}

	if err := c.storage.DeleteCart(ctx, username); err != nil {
		return translate(log, op, "Failed to clear cart", err)
	}

	c.reads.Forget(username)

	return nil
}

func translate(log *slog.Logger, op, msg string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		log.Warn("context canceled", sl.Err(err))
		return fmt.Errorf("%s: %w", op, serviceerrors.ErrContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("deadline exceeded", sl.Err(err))
		return fmt.Errorf("%s: %w", op, serviceerrors.ErrDeadlineExceeded)
	case errors.Is(err, databaseerrors.ErrMalformedContents):
		log.Error("cart contents are corrupted", sl.Err(err))
		return fmt.Errorf("%s: %w", op, serviceerrors.ErrCorruptedCart)
	default:
		log.Error(msg, sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
}
