package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/n9te9/go-graphql-product-web/graphql"
	"github.com/n9te9/go-graphql-product-web/operation"
)

// ErrNoReview is returned when addReview answers without a review.
var ErrNoReview = errors.New("addReview returned no review")

// Doer executes a GraphQL request. *graphql.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *graphql.Request, out any) error
}

// Catalog reads products and writes reviews through the GraphQL API.
type Catalog struct {
	client Doer
}

func New(client Doer) *Catalog {
	return &Catalog{client: client}
}

func request(doc *operation.Document, variables map[string]any) *graphql.Request {
	return &graphql.Request{
		Query:         doc.Source,
		OperationName: doc.Name,
		Variables:     variables,
	}
}

// Products returns every product in the order the API returns them.
func (c *Catalog) Products(ctx context.Context) ([]Product, error) {
	var data struct {
		Products []Product `json:"products"`
	}
	if err := c.client.Do(ctx, request(operation.ProductsQuery(), nil), &data); err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return data.Products, nil
}

// Product returns the product with the given id, or nil when there is none.
func (c *Catalog) Product(ctx context.Context, id string) (*Product, error) {
	var data struct {
		Product *Product `json:"product"`
	}
	vars := map[string]any{"id": id}
	if err := c.client.Do(ctx, request(operation.ProductDetailQuery(), vars), &data); err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", id, err)
	}

	return data.Product, nil
}

// AddReview adds a review with the given comment to a product and returns the new review id.
// The star rating is always 0.
func (c *Catalog) AddReview(ctx context.Context, productID, comment string) (string, error) {
	var data struct {
		AddReview *struct {
			ID string `json:"id"`
		} `json:"addReview"`
	}
	vars := map[string]any{"pid": productID, "comment": comment}
	if err := c.client.Do(ctx, request(operation.AddReviewMutation(), vars), &data); err != nil {
		return "", fmt.Errorf("failed to add review to product %s: %w", productID, err)
	}

	if data.AddReview == nil {
		return "", ErrNoReview
	}

	return data.AddReview.ID, nil
}
