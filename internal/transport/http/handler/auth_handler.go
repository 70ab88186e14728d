package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"findease-api/internal/domain"
	"findease-api/internal/service"
	"findease-api/internal/transport/http/ez"
	mdw "findease-api/internal/transport/http/middleware"
)

// AuthHandler /api/auth 下的注册、登录、当前用户
type AuthHandler struct {
	acct *service.AccountService
	auth gin.HandlerFunc
}

func NewAuthHandler(acct *service.AccountService, auth gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{acct: acct, auth: auth}
}

type credentialsIn struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionOut struct {
	Message string            `json:"message"`
	User    domain.PublicUser `json:"user"`
	Token   string            `json:"token"`
}

type userOut struct {
	User domain.PublicUser `json:"user"`
}

func (h *AuthHandler) MountAPI(g *gin.RouterGroup) {
	ez.Register(g, ez.Action[credentialsIn, sessionOut]{
		Method:  http.MethodPost,
		Path:    "/auth/signup",
		Binder:  ez.BindJSON,
		Success: http.StatusCreated,
		Handler: func(c *gin.Context, in *credentialsIn) (sessionOut, error) {
			u, tok, err := h.acct.Register(in.Name, in.Email, in.Password)
			if err != nil {
				return sessionOut{}, mapServiceErr(err)
			}
			return sessionOut{Message: "Account created.", User: u, Token: tok}, nil
		},
	})

	ez.Register(g, ez.Action[credentialsIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *credentialsIn) (sessionOut, error) {
			u, tok, err := h.acct.Login(in.Email, in.Password)
			if err != nil {
				// 登录侧的域名拒绝历来是 403，与注册的 400 不同
				if errors.Is(err, service.ErrDomainRejected) {
					return sessionOut{}, ez.Forbidden(err.Error())
				}
				return sessionOut{}, mapServiceErr(err)
			}
			return sessionOut{Message: "Logged in.", User: u, Token: tok}, nil
		},
	})

	ez.Register(g, ez.Action[struct{}, userOut]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (userOut, error) {
			u := mdw.CurrentUser(c)
			if u == nil {
				return userOut{}, ez.Unauthorized("")
			}
			return userOut{User: u.Public()}, nil
		},
	}, h.auth)
}
