package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"findease-api/internal/domain"
	"findease-api/internal/service"
	"findease-api/internal/transport/http/ez"
	mdw "findease-api/internal/transport/http/middleware"
)

// ClaimHandler /api/claims 下的认领提交与管理端处理
type ClaimHandler struct {
	claims *service.ClaimService
	auth   gin.HandlerFunc
	admin  gin.HandlerFunc
}

func NewClaimHandler(claims *service.ClaimService, auth, admin gin.HandlerFunc) *ClaimHandler {
	return &ClaimHandler{claims: claims, auth: auth, admin: admin}
}

type fileClaimIn struct {
	ItemID      string `json:"itemId"`
	Message     string `json:"message"`
	ContactInfo string `json:"contactInfo"`
}

type claimOut struct {
	Message string        `json:"message"`
	Claim   *domain.Claim `json:"claim"`
}

type claimsOut struct {
	Claims []service.ClaimWithOwner `json:"claims"`
}

type statusIn struct {
	Status string `json:"status"`
}

func (h *ClaimHandler) MountAPI(g *gin.RouterGroup) {
	ez.Register(g, ez.Action[fileClaimIn, claimOut]{
		Method:  http.MethodPost,
		Path:    "/claims",
		Binder:  ez.BindJSON,
		Success: http.StatusCreated,
		Handler: func(c *gin.Context, in *fileClaimIn) (claimOut, error) {
			cl, err := h.claims.File(in.ItemID, c.GetString(mdw.KeyUserID), in.Message, in.ContactInfo)
			if err != nil {
				return claimOut{}, mapServiceErr(err)
			}
			return claimOut{Message: "Claim submitted. Admin will contact you.", Claim: cl}, nil
		},
	}, h.auth)

	ez.Register(g, ez.Action[struct{}, claimsOut]{
		Method: http.MethodGet,
		Path:   "/claims",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (claimsOut, error) {
			cs, err := h.claims.ListAll()
			if err != nil {
				return claimsOut{}, mapServiceErr(err)
			}
			return claimsOut{Claims: cs}, nil
		},
	}, h.auth, h.admin)

	ez.Register(g, ez.Action[statusIn, claimOut]{
		Method: http.MethodPatch,
		Path:   "/claims/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *statusIn) (claimOut, error) {
			cl, err := h.claims.SetStatus(c.Request.Context(), c.Param("id"), in.Status)
			if err != nil {
				return claimOut{}, mapServiceErr(err)
			}
			return claimOut{Message: "Claim updated.", Claim: cl}, nil
		},
	}, h.auth, h.admin)
}
