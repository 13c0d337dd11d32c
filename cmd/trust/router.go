package main

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/health"
	"github.com/richxcame/crediscore/pkg/middleware"
)

const (
	serviceName    = "trust-engine"
	serviceVersion = "1.0.0"

	maxRequestBody = 1 << 20

	// remote dependencies are pinged at most this often, however often /healthz is hit
	remoteHealthTTL = 30 * time.Second
)

// remoteCheck caches a ping against a service outside our control
func remoteCheck(ping common.CheckFunc) common.CheckFunc {
	return health.NewCachedChecker(ping, remoteHealthTTL).Check
}

// routeRegistrar is implemented by every domain handler
type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// routerDeps is what the HTTP layer is assembled from
type routerDeps struct {
	corsOrigins string
	handlers    []routeRegistrar
	checks      map[string]common.CheckFunc
	optional    []string
	extra       []gin.HandlerFunc
}

func setupRouter(deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(deps.extra...)
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.MaxBodySize(maxRequestBody))
	router.Use(middleware.Metrics(serviceName))
	router.Use(cors.New(corsConfig(deps.corsOrigins)))

	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, serviceVersion, deps.checks, deps.optional...))
	router.GET("/health/live", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	for _, h := range deps.handlers {
		h.RegisterRoutes(api)
	}

	return router
}

func corsConfig(origins string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader}

	allowed := make([]string, 0)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
	}
	return cfg
}
