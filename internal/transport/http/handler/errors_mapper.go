package handler

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"findease-api/internal/service"
	"findease-api/internal/transport/http/ez"
)

// mapServiceErr 领域错误 → 带状态码的传输层错误。
// 端点相关的特例（登录的域名拒绝是 403）由各 handler 自己先行处理。
func mapServiceErr(err error) error {
	switch {
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrMissingLocationDetail),
		errors.Is(err, service.ErrItemNotApproved),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrWeakCredential),
		errors.Is(err, service.ErrDomainRejected):
		return ez.BadRequest(err.Error())
	case errors.Is(err, service.ErrDuplicateAccount):
		return ez.Conflict(err.Error())
	case errors.Is(err, service.ErrInvalidCredential),
		errors.Is(err, service.ErrUnauthenticated):
		return ez.Unauthorized(err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return ez.NotFound(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return ez.Unavailable("Database not connected.")
	default:
		return ez.Internal("Server error.", err)
	}
}
