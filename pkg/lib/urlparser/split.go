package urlparser

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

type Route int

const (
	RouteCart  Route = iota + 1 // /carts/{username}
	RouteItems                  // /carts/{username}/items
	RouteItem                   // /carts/{username}/items/{productId}
)

var (
	ErrWrongFormat      = errors.New("wrong url format")
	ErrInvalidProductId = errors.New("invalid productId, must be int")
)

type PathParams struct {
	Route     Route
	Username  string
	ProductId int
}

// ParseCartPath expects the escaped form of the path (url.URL.EscapedPath).
// Segments are split before unescaping, so an encoded slash stays inside its
// segment.
func ParseCartPath(escapedPath string) (PathParams, error) {
	trimmed := strings.Trim(escapedPath, "/")
	parts := strings.Split(trimmed, "/")

	params := PathParams{}

	for i, part := range parts {
		unescaped, err := url.PathUnescape(part)
		if err != nil {
			return params, ErrWrongFormat
		}
		parts[i] = unescaped
	}

	if len(parts) < 2 || len(parts) > 4 || parts[0] != "carts" || parts[1] == "" {
		return params, ErrWrongFormat
	}
	params.Username = parts[1]

	switch len(parts) {
	case 2:
		params.Route = RouteCart
		return params, nil
	case 3:
		if parts[2] != "items" {
			return params, ErrWrongFormat
		}
		params.Route = RouteItems
		return params, nil
	default:
		if parts[2] != "items" {
			return params, ErrWrongFormat
		}
		productId, err := strconv.Atoi(parts[3])
		if err != nil {
			return params, ErrInvalidProductId
		}
		params.Route = RouteItem
		params.ProductId = productId
		return params, nil
	}
}
