package web

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/n9te9/go-graphql-product-web/catalog"
	"github.com/n9te9/go-graphql-product-web/graphql"
	"github.com/n9te9/go-graphql-product-web/internal/log"
	"golang.org/x/sync/singleflight"
)

// Catalog is the data the views are rendered from.
type Catalog interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Product(ctx context.Context, id string) (*catalog.Product, error)
	AddReview(ctx context.Context, productID, comment string) (string, error)
}

type HandlerOption struct {
	Logger          logr.Logger
	EnableRequestID bool
}

type handler struct {
	catalog         Catalog
	views           *views
	mux             *http.ServeMux
	logger          logr.Logger
	enableRequestID bool

	// inflight collapses concurrent resubmissions of one rendered form.
	inflight singleflight.Group
}

var _ http.Handler = (*handler)(nil)

func NewHandler(c Catalog, opt HandlerOption) (*handler, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	h := &handler{
		catalog:         c,
		views:           v,
		mux:             http.NewServeMux(),
		logger:          opt.Logger,
		enableRequestID: opt.EnableRequestID,
	}

	h.mux.HandleFunc("GET /{$}", h.index)
	h.mux.HandleFunc("GET /products", h.listProducts)
	h.mux.HandleFunc("GET /products/{productId}", h.showProduct)
	h.mux.HandleFunc("POST /products/{productId}/reviews", h.addReview)
	h.mux.HandleFunc("GET /healthz", h.healthz)

	return h, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(graphql.RequestIDHeader)
	if requestID == "" && h.enableRequestID {
		requestID = uuid.NewString()
	}

	logger := h.logger.WithValues("method", r.Method, "path", r.URL.Path)
	ctx := r.Context()
	if requestID != "" {
		logger = logger.WithValues("requestId", requestID)
		ctx = graphql.WithRequestID(ctx, requestID)
		w.Header().Set(graphql.RequestIDHeader, requestID)
	}
	ctx = log.WithLogger(ctx, logger)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	h.mux.ServeHTTP(rec, r.WithContext(ctx))

	logger.Info("handled request", "status", rec.status, "duration", time.Since(start).String())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/products", http.StatusFound)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok")) //nolint:errcheck
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.catalog.Products(ctx)
	if err != nil {
		log.FromContext(ctx).Error(err, "failed to fetch products")
		h.render(w, r, http.StatusBadGateway, viewLoading, messagePage{Title: "Products"})
		return
	}

	h.render(w, r, http.StatusOK, viewProducts, productsPage{Title: "Products", Products: products})
}

func (h *handler) showProduct(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")

	product, ok := h.fetchProduct(w, r, productID)
	if !ok {
		return
	}

	h.render(w, r, http.StatusOK, viewProduct, productPage{
		Title:   product.Name,
		Product: product,
		Form:    ReviewForm{ProductID: productID, Token: uuid.NewString()},
	})
}

func (h *handler) addReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.PathValue("productId")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	product, ok := h.fetchProduct(w, r, productID)
	if !ok {
		return
	}

	form := ReviewForm{
		ProductID: productID,
		Comment:   r.PostForm.Get("comment"),
		Token:     r.PostForm.Get("token"),
	}
	if !form.CanSubmit() {
		if form.Token == "" {
			form.Token = uuid.NewString()
		}
		h.render(w, r, http.StatusUnprocessableEntity, viewProduct, productPage{
			Title:   product.Name,
			Product: product,
			Form:    form,
		})
		return
	}

	reviewID, err := h.submitReview(ctx, form)
	if err != nil {
		log.FromContext(ctx).Error(err, "failed to add review", "productId", productID)
		h.render(w, r, http.StatusBadGateway, viewLoading, messagePage{Title: product.Name})
		return
	}

	log.FromContext(ctx).V(1).Info("added review", "productId", productID, "reviewId", reviewID)

	// The detail page is fetched again after the redirect and renders an empty form.
	http.Redirect(w, r, "/products/"+url.PathEscape(productID), http.StatusSeeOther)
}

// fetchProduct renders the not found or loading view itself and reports false
// when there is no product to show.
func (h *handler) fetchProduct(w http.ResponseWriter, r *http.Request, productID string) (*catalog.Product, bool) {
	ctx := r.Context()

	product, err := h.catalog.Product(ctx, productID)
	if err != nil {
		log.FromContext(ctx).Error(err, "failed to fetch product", "productId", productID)
		h.render(w, r, http.StatusBadGateway, viewLoading, messagePage{Title: "Product"})
		return nil, false
	}

	if product == nil {
		h.render(w, r, http.StatusNotFound, viewNotFound, messagePage{Title: "Not found"})
		return nil, false
	}

	return product, true
}

// submitReview issues the mutation once per form token. Submissions without a
// token are never joined.
func (h *handler) submitReview(ctx context.Context, form ReviewForm) (string, error) {
	if form.Token == "" {
		return h.catalog.AddReview(ctx, form.ProductID, form.Comment)
	}

	key := form.ProductID + "\x00" + form.Token + "\x00" + form.Comment
	// The mutation outlives the caller that started it; joined callers still wait for it.
	shareCtx := context.WithoutCancel(ctx)
	v, err, shared := h.inflight.Do(key, func() (any, error) {
		return h.catalog.AddReview(shareCtx, form.ProductID, form.Comment)
	})
	if err != nil {
		return "", err
	}

	if shared {
		log.FromContext(ctx).V(1).Info("joined in-flight review submission", "productId", form.ProductID)
	}

	return v.(string), nil
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, view string, data any) {
	if err := h.views.render(w, status, view, data); err != nil {
		log.FromContext(r.Context()).Error(err, "failed to render view", "view", view)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
