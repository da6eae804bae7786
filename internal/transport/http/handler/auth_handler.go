package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usdrop-admin/internal/service"
	"usdrop-admin/internal/transport/http/ez"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler serves sign-up/in/out and the current session on the user API.
type AuthHandler struct {
	svc     *service.SessionService
	cookie  CookieConfig
	session gin.HandlerFunc // RequireSession for signout/session
	log     *zap.Logger
}

func NewAuthHandler(svc *service.SessionService, cookie CookieConfig, session gin.HandlerFunc, l *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie, session: session, log: l}
}

// Priority mounts auth before other API modules.
func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(g *gin.RouterGroup) {
	pub := ez.New(g.Group("/auth"), h.log)

	ez.RegisterAction(pub, ez.Action[service.SignUpInput, *service.Session]{
		Name:        "signup",
		Method:      http.MethodPost,
		Path:        "/signup",
		Binder:      ez.BindJSON,
		BindMessage: func(err error) string { return service.MessageFor(service.SignUpInput{}, err) },
		Handler: func(c *gin.Context, in *service.SignUpInput) (*service.Session, error) {
			s, err := h.svc.SignUp(c.Request.Context(), *in)
			if err != nil {
				return nil, err
			}
			h.setCookie(c, s)
			return s, nil
		},
	})

	ez.RegisterAction(pub, ez.Action[service.SignInInput, *service.Session]{
		Name:        "signin",
		Method:      http.MethodPost,
		Path:        "/signin",
		Binder:      ez.BindJSON,
		BindMessage: func(err error) string { return service.MessageFor(service.SignInInput{}, err) },
		Handler: func(c *gin.Context, in *service.SignInInput) (*service.Session, error) {
			s, err := h.svc.SignIn(c.Request.Context(), *in)
			if err != nil {
				return nil, err
			}
			h.setCookie(c, s)
			return s, nil
		},
	})

	authed := pub.Group("", h.session)

	ez.RegisterAction(authed, ez.Action[struct{}, gin.H]{
		Name:   "signout",
		Method: http.MethodPost,
		Path:   "/signout",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.svc.SignOut(c.Request.Context(), ez.CallerFrom(c)); err != nil {
				return nil, err
			}
			h.clearCookie(c)
			return gin.H{"success": true}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, *service.Session]{
		Name:   "session",
		Method: http.MethodGet,
		Path:   "/session",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Session, error) {
			return h.svc.Current(c.Request.Context(), ez.CallerFrom(c))
		},
	})
}

func (h *AuthHandler) setCookie(c *gin.Context, s *service.Session) {
	maxAge := 0
	if s.ExpiresAt != nil {
		maxAge = int(time.Until(*s.ExpiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, s.Token, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
