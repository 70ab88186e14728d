package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"findease-api/internal/domain"
	"findease-api/internal/service"
	"findease-api/internal/transport/http/ez"
	mdw "findease-api/internal/transport/http/middleware"
)

// ItemHandler /api/lost 下的登记、列表、审批
type ItemHandler struct {
	items *service.ItemService
	auth  gin.HandlerFunc
	admin gin.HandlerFunc
}

func NewItemHandler(items *service.ItemService, auth, admin gin.HandlerFunc) *ItemHandler {
	return &ItemHandler{items: items, auth: auth, admin: admin}
}

type itemOut struct {
	Message string       `json:"message"`
	Item    *domain.Item `json:"item"`
}

type itemsOut struct {
	Items []domain.Item `json:"items"`
}

func (h *ItemHandler) MountAPI(g *gin.RouterGroup) {
	ez.Register(g, ez.Action[service.SubmitInput, itemOut]{
		Method:  http.MethodPost,
		Path:    "/lost/add",
		Binder:  ez.BindJSON,
		Success: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.SubmitInput) (itemOut, error) {
			it, err := h.items.Submit(*in, c.GetString(mdw.KeyUserID))
			if err != nil {
				return itemOut{}, mapServiceErr(err)
			}
			return itemOut{Message: "Lost item reported. It will appear after admin approval.", Item: it}, nil
		},
	}, h.auth)

	// 公开看板：可见性过滤 + 触发归档清理
	ez.Register(g, ez.Action[struct{}, itemsOut]{
		Method: http.MethodGet,
		Path:   "/lost/approved",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (itemsOut, error) {
			items, err := h.items.ListApproved(c.Request.Context())
			if err != nil {
				return itemsOut{}, mapServiceErr(err)
			}
			return itemsOut{Items: items}, nil
		},
	})

	ez.Register(g, ez.Action[struct{}, itemsOut]{
		Method: http.MethodGet,
		Path:   "/lost/all",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (itemsOut, error) {
			items, err := h.items.ListAll()
			if err != nil {
				return itemsOut{}, mapServiceErr(err)
			}
			return itemsOut{Items: items}, nil
		},
	})

	ez.Register(g, ez.Action[struct{}, itemsOut]{
		Method: http.MethodGet,
		Path:   "/lost/pending",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (itemsOut, error) {
			items, err := h.items.ListPending()
			if err != nil {
				return itemsOut{}, mapServiceErr(err)
			}
			return itemsOut{Items: items}, nil
		},
	}, h.auth, h.admin)

	ez.Register(g, ez.Action[struct{}, itemOut]{
		Method: http.MethodPatch,
		Path:   "/lost/:id/approve",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (itemOut, error) {
			id := c.Param("id")
			if id == "" {
				return itemOut{}, ez.BadRequest("Invalid item id.")
			}
			it, err := h.items.Approve(c.Request.Context(), id)
			if err != nil {
				return itemOut{}, mapServiceErr(err)
			}
			return itemOut{Message: "Item approved.", Item: it}, nil
		},
	}, h.auth, h.admin)

	ez.Register(g, ez.Action[struct{}, itemsOut]{
		Method: http.MethodGet,
		Path:   "/lost/my-reports",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (itemsOut, error) {
			items, err := h.items.ListMine(c.GetString(mdw.KeyUserID))
			if err != nil {
				return itemsOut{}, mapServiceErr(err)
			}
			return itemsOut{Items: items}, nil
		},
	}, h.auth)
}
