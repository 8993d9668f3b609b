package carthandler

import (
	"cartstore/internal/models"
	serviceerrors "cartstore/internal/service"
	"cartstore/pkg/lib/logger/sl"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const StatusClientClosedRequest = 499

const maxBodyBytes = 1 << 10

type CartService interface {
	GetCartItems(ctx context.Context, username string) ([]models.Product, error)
	AddProductToCart(ctx context.Context, username string, productId int) error
	RemoveProductFromCart(ctx context.Context, username string, productId int) error
	ClearCart(ctx context.Context, username string) error
}

// AddItemRequest carries any integer product id, zero and negatives included;
// the pointer tells a missing field apart from 0.
type AddItemRequest struct {
	ProductId *int `json:"product_id" validate:"required"`
}

type CartResponse struct {
	Username string           `json:"username"`
	Items    []models.Product `json:"items"`
}

type Handler struct {
	log      *slog.Logger
	service  CartService
	validate *validator.Validate
}

func New(log *slog.Logger, service CartService) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// GET /carts/{username}
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, username string) {
	const op = "handlers.cart.GetCart"
	log := h.log.With("op", op, "username", username)

	if !h.validUsername(w, log, username) {
		return
	}

	items, err := h.service.GetCartItems(r.Context(), username)
	if err != nil {
		h.serviceError(w, log, err, "Failed to get cart")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(CartResponse{Username: username, Items: items}); err != nil {
		log.Error("Failed to respond user", sl.Err(err))
	}
}

// POST /carts/{username}/items
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, username string) {
	const op = "handlers.cart.AddToCart"
	log := h.log.With("op", op, "username", username)

	if !h.validUsername(w, log, username) {
		return
	}

	defer r.Body.Close()

	var req AddItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Warn("Cannot decode request body", sl.Err(err))
		http.Error(w, "Cannot decode request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("Failed to validate", sl.Err(err))
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.AddProductToCart(r.Context(), username, *req.ProductId); err != nil {
		h.serviceError(w, log, err, "Failed to add product to cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /carts/{username}/items/{productId}
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request, username string, productId int) {
	const op = "handlers.cart.RemoveFromCart"
	log := h.log.With("op", op, "username", username, "product_id", productId)

	if !h.validUsername(w, log, username) {
		return
	}

	if err := h.service.RemoveProductFromCart(r.Context(), username, productId); err != nil {
		h.serviceError(w, log, err, "Failed to remove product from cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /carts/{username}
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, username string) {
	const op = "handlers.cart.ClearCart"
	log := h.log.With("op", op, "username", username)

	if !h.validUsername(w, log, username) {
		return
	}

	if err := h.service.ClearCart(r.Context(), username); err != nil {
		h.serviceError(w, log, err, "Failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) validUsername(w http.ResponseWriter, log *slog.Logger, username string) bool {
	if err := h.validate.Var(username, "required,max=64,printascii"); err != nil {
		log.Warn("Invalid username", sl.Err(err))
		http.Error(w, "Invalid username", http.StatusBadRequest)
		return false
	}

	return true
}

func (h *Handler) serviceError(w http.ResponseWriter, log *slog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, serviceerrors.ErrContextCanceled):
		log.Warn("Context canceled", sl.Err(err))
		http.Error(w, "Context canceled", StatusClientClosedRequest)
	case errors.Is(err, serviceerrors.ErrDeadlineExceeded):
		log.Warn("Deadline exceeded", sl.Err(err))
		http.Error(w, "Deadline exceeded", http.StatusGatewayTimeout)
	case errors.Is(err, serviceerrors.ErrCorruptedCart):
		log.Error("Cart is corrupted", sl.Err(err))
		http.Error(w, "Cart is corrupted", http.StatusConflict)
	default:
		log.Error(msg, sl.Err(err))
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
