package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Product is the canonical shape every screen works with, regardless of
// which key casing the backend answered in.
type Product struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
	Stock  int     `json:"stock"`
	Marca  string  `json:"marca"`
}

// NewProduct is the create payload; the backend assigns the id.
type NewProduct struct {
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
	Stock  int     `json:"stock"`
	Marca  string  `json:"marca"`
}

const productsPath = "/domains/productos/products"

func (c *Client) Products(ctx context.Context) ([]Product, error) {
	raw, err := c.request(ctx, http.MethodGet, productsPath, nil)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{What: "la lista de productos no es un arreglo JSON"}
	}

	products := make([]Product, 0, len(items))
	for _, item := range items {
		p, err := decodeProduct(item)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	raw, err := c.request(ctx, http.MethodGet, productsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	p, err := decodeProduct(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, product NewProduct) (*Product, error) {
	raw, err := c.request(ctx, http.MethodPost, productsPath, product)
	if err != nil {
		return nil, err
	}
	p, err := decodeProduct(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct sends the full product body; user_id and description ride
// as query parameters because that is where the backend reads the audit
// trail from.
func (c *Client) UpdateProduct(ctx context.Context, id string, product NewProduct, userID, description string) error {
	_, err := c.request(ctx, http.MethodPut, productsPath+"/"+url.PathEscape(id)+"?"+auditQuery(userID, description), product)
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, id, userID, description string) error {
	_, err := c.request(ctx, http.MethodDelete, productsPath+"/"+url.PathEscape(id)+"?"+auditQuery(userID, description), nil)
	return err
}

func auditQuery(userID, description string) string {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("description", description)
	return params.Encode()
}
