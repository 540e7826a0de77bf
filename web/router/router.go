package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"licensedesk.com/licensedesk/config"
	"licensedesk.com/licensedesk/core"
	licensing "licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/metrics"
	"licensedesk.com/licensedesk/web/handlers"
	"licensedesk.com/licensedesk/web/handlers/auth"
	"licensedesk.com/licensedesk/web/handlers/license"
	"licensedesk.com/licensedesk/web/middlewares"
)

type Dependencies struct {
	Config    *config.Config
	DM        *core.DatabaseManager
	Activator *licensing.Activator
	Accounts  *licensing.Accounts
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

func Setup(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(log.Named("http")))
	r.Use(middlewares.CORS(cfg.Server.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.GET("/ping", handlers.Ping)
	r.GET("/healthz", handlers.Health(deps.DM))

	api := r.Group("/api")

	public := api.Group("")
	if cfg.Server.RateLimit.Enabled {
		limiter := middlewares.NewIPRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
		public.Use(limiter.Middleware())
	}
	license.RegisterPublic(public, deps.Activator, log)

	secret := []byte(cfg.Auth.Secret)
	protected := api.Group("")
	protected.Use(middlewares.Authentication(secret, cfg.Auth.CookieName))

	auth.Register(public, protected, deps.Accounts, auth.Options{
		Secret:       secret,
		TokenTTL:     cfg.Auth.TokenTTL,
		CookieName:   cfg.Auth.CookieName,
		SecureCookie: cfg.IsProduction(),
	}, log)
	license.Register(protected, deps.Activator, log)

	return r
}
