package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	licensing "licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/security"
	web "licensedesk.com/licensedesk/web/common"
	"licensedesk.com/licensedesk/web/middlewares"
)

type Options struct {
	Secret     []byte
	TokenTTL   time.Duration
	CookieName string
	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool
}

type Endpoint struct {
	accounts *licensing.Accounts
	opts     Options
	log      *zap.Logger
}

// Register mounts login and logout on public and the session probe on
// protected.
func Register(public, protected *gin.RouterGroup, accounts *licensing.Accounts, opts Options, log *zap.Logger) {
	if opts.CookieName == "" {
		opts.CookieName = middlewares.DefaultCookieName
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = security.DefaultExpires
	}
	endpoint := &Endpoint{accounts: accounts, opts: opts, log: log}
	public.POST("/auth/login", endpoint.Login)
	public.POST("/auth/logout", endpoint.Logout)
	protected.GET("/auth/me", endpoint.Me)
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ep *Endpoint) Login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.LoginResponse{Message: web.FormatBindingError(err)})
		return
	}

	user, err := ep.accounts.Authenticate(c.Request.Context(), dto.Username, dto.Password)
	if errors.Is(err, licensing.ErrInvalidCredentials) {
		ep.log.Warn("login failed", zap.String("username", dto.Username), zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, web.LoginResponse{Message: err.Error()})
		return
	}
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}

	token, err := security.CreateAdminToken(&security.AdminIdentity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, ep.opts.Secret, ep.opts.TokenTTL)
	if err != nil {
		web.AbortWithError(c, ep.log, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ep.opts.CookieName, token, int(ep.opts.TokenTTL.Seconds()), "/", "", ep.opts.SecureCookie, true)
	c.JSON(http.StatusOK, web.LoginResponse{Success: true, Token: token})
}

func (ep *Endpoint) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ep.opts.CookieName, "", -1, "/", "", ep.opts.SecureCookie, true)
	c.JSON(http.StatusOK, web.LoginResponse{Success: true})
}

func (ep *Endpoint) Me(c *gin.Context) {
	claims := middlewares.Claims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, web.NewErrorResponse("not signed in"))
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{
		"username":   claims.Username,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt.Time,
	}))
}
