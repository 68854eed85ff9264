// Package api assembles the ingestion service's HTTP surface.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/handler"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/middleware"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/ginserver"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

// Options configures the API server assembly.
type Options struct {
	ServiceName string
	Version     string
	Port        int
	Debug       bool
	CORSOrigins []string
	JWTSecret   string

	Links     *handler.LinksHandler
	Logger    logger.Logger
	Registry  *prometheus.Registry
	DBPing    func() error
	RedisPing func() error
}

// NewServer builds the ingestion HTTP server: health and metrics endpoints
// plus the protected links API.
func NewServer(opts Options) *ginserver.Server {
	builder := ginserver.NewServerBuilder(opts.ServiceName, opts.Port).
		WithLogger(opts.Logger).
		WithVersion(opts.Version).
		WithDebug(opts.Debug).
		WithCORSOrigins(opts.CORSOrigins).
		WithRoutes(func(router *gin.Engine) {
			registerRoutes(router, opts)
		})

	if opts.DBPing != nil {
		builder = builder.WithDatabaseHealthCheck(opts.DBPing)
	}
	if opts.RedisPing != nil {
		builder = builder.WithRedisHealthCheck(opts.RedisPing)
	}

	return builder.Build()
}

func registerRoutes(router *gin.Engine, opts Options) {
	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(opts.JWTSecret))
	{
		v1.POST("/links", opts.Links.Create)
	}
}
