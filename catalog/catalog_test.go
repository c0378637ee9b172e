package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/n9te9/go-graphql-product-web/catalog"
	"github.com/n9te9/go-graphql-product-web/graphql"
)

type recorder struct {
	mu   sync.Mutex
	reqs []graphql.Request
}

func (r *recorder) add(req graphql.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recorder) requests() []graphql.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]graphql.Request(nil), r.reqs...)
}

// newAPI starts a GraphQL endpoint answering by operation name with canned data.
func newAPI(t *testing.T, responses map[string]string, seen *recorder) *catalog.Catalog {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphql.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if seen != nil {
			seen.add(req)
		}

		body, ok := responses[req.OperationName]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	return catalog.New(graphql.NewClient(srv.URL, srv.Client()))
}

func TestCatalog_Products(t *testing.T) {
	c := newAPI(t, map[string]string{
		"ProductsQuery": `{"data":{"products":[{"id":"2","name":"Gadget"},{"id":"1","name":"Widget"}]}}`,
	}, nil)

	got, err := c.Products(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []catalog.Product{{ID: "2", Name: "Gadget"}, {ID: "1", Name: "Widget"}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("Products() mismatch (-want +got):\n%s", d)
	}
}

func TestCatalog_Product(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     *catalog.Product
	}{
		{
			name:     "found with reviews",
			response: `{"data":{"product":{"id":"1","name":"Widget","description":"A widget","reviews":[{"id":"r1","commentBody":"nice"}]}}}`,
			want: &catalog.Product{
				ID:          "1",
				Name:        "Widget",
				Description: "A widget",
				Reviews:     []catalog.Review{{ID: "r1", CommentBody: "nice"}},
			},
		},
		{
			name:     "not found",
			response: `{"data":{"product":null}}`,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := &recorder{}
			c := newAPI(t, map[string]string{"ProductDetailQuery": tt.response}, seen)

			got, err := c.Product(context.Background(), "1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("Product() mismatch (-want +got):\n%s", d)
			}

			reqs := seen.requests()
			if len(reqs) != 1 {
				t.Fatalf("expected 1 request, got %d", len(reqs))
			}
			if d := cmp.Diff(map[string]any{"id": "1"}, reqs[0].Variables); d != "" {
				t.Errorf("variables mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestCatalog_AddReview(t *testing.T) {
	seen := &recorder{}
	c := newAPI(t, map[string]string{
		"AddReviewMutation": `{"data":{"addReview":{"id":"r9"}}}`,
	}, seen)

	id, err := c.AddReview(context.Background(), "1", "great")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "r9" {
		t.Errorf("AddReview() = %q, want %q", id, "r9")
	}

	want := map[string]any{"pid": "1", "comment": "great"}
	reqs := seen.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if d := cmp.Diff(want, reqs[0].Variables); d != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", d)
	}
}

func TestCatalog_AddReview_NoReview(t *testing.T) {
	c := newAPI(t, map[string]string{
		"AddReviewMutation": `{"data":{"addReview":null}}`,
	}, nil)

	_, err := c.AddReview(context.Background(), "1", "great")
	if !errors.Is(err, catalog.ErrNoReview) {
		t.Fatalf("expected ErrNoReview, got %v", err)
	}
}

func TestCatalog_Products_Error(t *testing.T) {
	c := newAPI(t, map[string]string{
		"ProductsQuery": `{"errors":[{"message":"unavailable"}]}`,
	}, nil)

	_, err := c.Products(context.Background())
	var gqlErrs graphql.Errors
	if !errors.As(err, &gqlErrs) {
		t.Fatalf("expected graphql.Errors, got %v", err)
	}
}
