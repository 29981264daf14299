package internal

import (
	"context"
	"fmt"

	"github.com/filedepot/filedepot_server/internal/health"
	"github.com/filedepot/filedepot_server/internal/middleware"
	"github.com/filedepot/filedepot_server/internal/router"
	"github.com/filedepot/filedepot_server/internal/status"
	"github.com/filedepot/filedepot_server/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const serverName = "filedepot"

// Modules lists the route modules in mount order.
func Modules(config *Config, version string, service *storage.Service) []router.Module {
	return []router.Module{
		health.NewEndpoints(version),
		status.NewEndpoints(version, config.Server.Prefix, service),
		storage.NewEndpoints(service, config.Server.Prefix),
	}
}

func NewStorageService(ctx context.Context, config *Config, backend storage.Backend) (*storage.Service, error) {
	selector := storage.NewSelector(
		storage.NewVideoStrategy(config.Storage.VideoPath, config.Storage.VideoMaxSize),
		storage.NewImageStrategy(config.Storage.ImagePath, config.Storage.ImageMaxSize),
	)
	service := storage.NewService(selector, backend)
	if err := service.CheckDestinations(ctx); err != nil {
		return nil, err
	}
	return service, nil
}

func NewRequestHandler(config *Config, modules []router.Module) (fasthttp.RequestHandler, error) {
	opts := []router.Option{router.WithErrorHandler(middleware.InterceptError)}
	if config.Static.Root != "" {
		opts = append(opts, router.WithNotFound(newStaticHandler(config.Static.Root)))
	}

	r, err := router.Compose(modules, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compose routes: %w", err)
	}
	log.Info().Strs("modules", r.Modules()).Msg("Route modules mounted")

	corsMiddleware := middleware.NewCORSMiddleware(config.CORS.AllowedOrigins)
	handler := middleware.Recover(r.Handle)
	handler = corsMiddleware.Handle(handler)
	return middleware.RequestLogger(handler), nil
}

func newStaticHandler(root string) fasthttp.RequestHandler {
	fs := &fasthttp.FS{
		Root:               root,
		IndexNames:         []string{"index.html"},
		GenerateIndexPages: false,
		AcceptByteRange:    true,
		PathNotFound: func(ctx *fasthttp.RequestCtx) {
			router.WriteStatus(ctx, fasthttp.StatusNotFound)
		},
	}
	serve := fs.NewRequestHandler()

	return func(ctx *fasthttp.RequestCtx) {
		method := string(ctx.Method())
		if method != fasthttp.MethodGet && method != fasthttp.MethodHead {
			router.WriteStatus(ctx, fasthttp.StatusNotFound)
			return
		}
		serve(ctx)
	}
}

func NewServer(config *Config, handler fasthttp.RequestHandler) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:            handler,
		Name:               serverName,
		MaxRequestBodySize: config.MaxRequestBodySize(),
		StreamRequestBody:  true,
		ReadTimeout:        config.Server.ReadTimeout,
		WriteTimeout:       config.Server.WriteTimeout,
		Logger:             &fasthttpLogger{},
	}
}

type fasthttpLogger struct{}

func (l *fasthttpLogger) Printf(format string, args ...any) {
	log.Warn().Str("component", "fasthttp").Msgf(format, args...)
}
