package main

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/snnyvrz/courselibrary/internal/docs"
	"github.com/snnyvrz/courselibrary/internal/handler"
	"github.com/snnyvrz/courselibrary/internal/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type routerDeps struct {
	corsOrigins []string
	authors     *handler.AuthorHandler
	health      *handler.HealthHandler
	registry    *prometheus.Registry
}

func newRouter(d routerDeps) *gin.Engine {
	e := gin.New()

	e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	})

	metrics := middleware.NewMetrics(d.registry)

	e.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		metrics.Handler(),
		middleware.Recovery(),
		cors.New(corsConfig(d.corsOrigins)),
		middleware.ErrorHandler(),
	)

	d.health.RegisterRoutes(e)

	api := e.Group("/api")
	{
		d.authors.RegisterRoutes(api)
	}

	docs.SwaggerInfo.BasePath = "/api"
	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))

	return e
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Location", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cfg
}
