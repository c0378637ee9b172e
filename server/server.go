package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/n9te9/go-graphql-product-web/catalog"
	"github.com/n9te9/go-graphql-product-web/graphql"
	"github.com/n9te9/go-graphql-product-web/web"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// NewHandler wires the GraphQL client, the catalog and the web handler for opt.
func NewHandler(opt Option, logger logr.Logger) (http.Handler, error) {
	timeout, err := opt.Timeout()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	if opt.Opentelemetry.TracingSetting.Enable {
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	client := graphql.NewClient(opt.Endpoint, httpClient)

	h, err := web.NewHandler(catalog.New(client), web.HandlerOption{
		Logger:          logger,
		EnableRequestID: opt.EnableRequestID,
	})
	if err != nil {
		return nil, err
	}

	if opt.Opentelemetry.TracingSetting.Enable {
		return otelhttp.NewHandler(h, opt.ServiceName), nil
	}

	return h, nil
}

// Run serves the web client until ctx is done or SIGTERM/interrupt arrives,
// then shuts the server down gracefully.
func Run(ctx context.Context, opt Option, logger logr.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, os.Interrupt)
	defer stop()

	if opt.Opentelemetry.TracingSetting.Enable {
		shutdownTracing, err := setupTracing(ctx, opt.ServiceName)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				logger.Error(err, "failed to shut down tracing")
			}
		}()
	}

	h, err := NewHandler(opt, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opt.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "endpoint", opt.Endpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		return srv.Shutdown(ctx)
	})

	return eg.Wait()
}
