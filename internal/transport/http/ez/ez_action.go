package ez

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "findease-api/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.GetString 取
)

// AErr 带 HTTP 状态的错误对象
type AErr struct {
	Status int
	Msg    string
	Err    error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func BadRequest(msg string) error   { return &AErr{Status: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Status: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Status: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Status: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Status: http.StatusConflict, Msg: msg} }
func Unavailable(msg string) error  { return &AErr{Status: http.StatusServiceUnavailable, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Status: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Action 一行注册一个接口：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PATCH" | "PUT" | "DELETE"
	Path    string
	Binder  Binder
	Success int // 成功状态码，0 视为 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// Register 挂载动作；mw 作用于该路由本身（鉴权、角色等）
func Register[I any, O any](g *gin.RouterGroup, a Action[I, O], mw ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone
		}
		if bindErr != nil {
			resp.Fail(c, http.StatusBadRequest, bindErr.Error())
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			var ae *AErr
			if errors.As(err, &ae) {
				resp.Fail(c, ae.Status, ae.Msg) // Msg 为空时 Fail 用状态码兜底文案
				return
			}
			resp.Fail(c, http.StatusInternalServerError, "")
			return
		}

		status := a.Success
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out)
	}

	handlers := append(append([]gin.HandlerFunc{}, mw...), h)
	switch a.Method {
	case http.MethodGet:
		g.GET(a.Path, handlers...)
	case http.MethodPatch:
		g.PATCH(a.Path, handlers...)
	case http.MethodPut:
		g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		g.DELETE(a.Path, handlers...)
	default:
		g.POST(a.Path, handlers...)
	}
}
