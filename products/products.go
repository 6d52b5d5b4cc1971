// Package products calls the storefront product endpoints through the
// authenticated session.
package products

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-storefront-client/transport"
	"github.com/pkg/errors"
)

// RouteProducts is the collection endpoint; items live at RouteProducts/{id}.
const RouteProducts = "/products"

var RequestRejectedErr = errors.New("request rejected by backend")

// Product as serialized by the backend.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Category    string   `json:"category,omitempty"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Reviews     int      `json:"reviews,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// Filters narrow a product listing. Zero values are omitted from the query.
type Filters struct {
	Search   string
	Category string
	MinPrice float64
	MaxPrice float64
}

func (f Filters) query() url.Values {
	query := url.Values{}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.Category != "" {
		query.Set("category", f.Category)
	}
	if f.MinPrice > 0 {
		query.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		query.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	return query
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Service performs product CRUD through the session manager.
type Service struct {
	session transport.Doer
}

// NewService creates a product Service over an authenticated Doer.
func NewService(doer transport.Doer) (*Service, error) {
	if doer == nil {
		return nil, errors.New("[products.NewService] session is required")
	}
	return &Service{session: doer}, nil
}

// List returns products matching the filters.
func (s *Service) List(ctx context.Context, filters Filters) ([]Product, error) {
	var listing []Product
	if err := s.do(ctx, http.MethodGet, RouteProducts, filters.query(), nil, &listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get returns one product by ID.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	product := &Product{}
	if err := s.do(ctx, http.MethodGet, itemRoute(id), nil, nil, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Create adds a product.
func (s *Service) Create(ctx context.Context, product Product) (*Product, error) {
	created := &Product{}
	if err := s.do(ctx, http.MethodPost, RouteProducts, nil, product, created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces a product.
func (s *Service) Update(ctx context.Context, id string, product Product) (*Product, error) {
	updated := &Product{}
	if err := s.do(ctx, http.MethodPut, itemRoute(id), nil, product, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, itemRoute(id), nil, nil, nil)
}

func (s *Service) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := s.session.Do(ctx, &transport.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return err
	}

	var env envelope
	if err := resp.DecodeJSON(&env); err != nil {
		return err
	}
	if !env.Success {
		return errors.Wrap(RequestRejectedErr, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "[Service.do] decode data")
		}
	}
	return nil
}

func itemRoute(id string) string {
	return fmt.Sprintf("%s/%s", RouteProducts, url.PathEscape(id))
}
