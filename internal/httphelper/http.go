// Package httphelper provides the operational HTTP server: health checks,
// prometheus metrics and optional profiling. The bot itself speaks to
// discord over the gateway, nothing here is user facing.
package httphelper

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Depado/ginprom"
	"github.com/crossban/xban/internal/config"
	"github.com/crossban/xban/internal/database"
	"github.com/crossban/xban/internal/log"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

const (
	readTimeout  = time.Second * 10
	writeTimeout = time.Second * 10
)

// New builds the operational HTTP server.
func New(conf config.Static, db database.Database, buildVersion string) *http.Server {
	engine := createRouter(conf, db, buildVersion)

	return &http.Server{
		Addr:         conf.Addr(),
		Handler:      engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

func createRouter(conf config.Static, db database.Database, buildVersion string) *gin.Engine {
	if !conf.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	useSloggin(engine, conf)

	if conf.SentryDSN != "" {
		useSentry(engine, buildVersion)
	}

	usePrometheus(engine)

	if conf.Debug() {
		pprof.Register(engine)
	}

	engine.GET("/healthz", onHealthz(db))

	return engine
}

func useSentry(engine *gin.Engine, version string) {
	engine.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	engine.Use(func(ctx *gin.Context) {
		if hub := sentrygin.GetHubFromContext(ctx); hub != nil {
			hub.Scope().SetTag("version", version)
		}

		ctx.Next()
	})
}

func usePrometheus(engine *gin.Engine) {
	prom := ginprom.New(func(prom *ginprom.Prometheus) {
		prom.Namespace = "xban"
		prom.Subsystem = "http"
	})
	prom.Use(engine)
	engine.Use(prom.Instrument())
}

func useSloggin(engine *gin.Engine, conf config.Static) {
	logConfig := sloggin.Config{
		DefaultLevel: log.ToSlogLevel(conf.LogLevel),
	}

	engine.Use(sloggin.NewWithConfig(slog.Default(), logConfig))
}

// onHealthz reports liveness plus database reachability.
func onHealthz(db database.Database) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pool := db.Pool()
		if pool == nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "database": "not connected"})

			return
		}

		if errPing := pool.Ping(ctx.Request.Context()); errPing != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "database": errPing.Error()})

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
