package routes

import (
	carthandler "cartstore/internal/handlers/cart"
	"cartstore/pkg/lib/urlparser"
	"errors"
	"net/http"
)

type Routes struct {
	cartHandler *carthandler.Handler
}

func New(cartHandler *carthandler.Handler) *Routes {
	return &Routes{
		cartHandler: cartHandler,
	}
}

func (r *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("/carts/", r.pathParser)
}

func (r *Routes) pathParser(ww http.ResponseWriter, req *http.Request) {
	params, err := urlparser.ParseCartPath(req.URL.EscapedPath())
	if err != nil {
		if errors.Is(err, urlparser.ErrInvalidProductId) {
			http.Error(ww, err.Error(), http.StatusBadRequest)
			return
		}
		http.NotFound(ww, req)
		return
	}

	switch {
	case params.Route == urlparser.RouteCart && req.Method == http.MethodGet:
		// GET /carts/{username}
		r.cartHandler.GetCart(ww, req, params.Username)
	case params.Route == urlparser.RouteCart && req.Method == http.MethodDelete:
		// DELETE /carts/{username}
		r.cartHandler.ClearCart(ww, req, params.Username)
	case params.Route == urlparser.RouteItems && req.Method == http.MethodPost:
		// POST /carts/{username}/items
		r.cartHandler.AddToCart(ww, req, params.Username)
	case params.Route == urlparser.RouteItem && req.Method == http.MethodDelete:
		// DELETE /carts/{username}/items/{productId}
		r.cartHandler.RemoveFromCart(ww, req, params.Username, params.ProductId)
	default:
		http.NotFound(ww, req)
	}
}
