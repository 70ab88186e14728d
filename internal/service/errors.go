package service

import "errors"

// 领域错误哨兵。handler 层用 errors.Is 映射 HTTP 状态码，
// 用户可见文案由各服务在返回时给出。
var (
	ErrMissingField          = errors.New("missing required field")
	ErrDomainRejected        = errors.New("email domain not allowed")
	ErrWeakCredential        = errors.New("password too weak")
	ErrDuplicateAccount      = errors.New("account already exists")
	ErrInvalidCredential     = errors.New("invalid credential")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrNotFound              = errors.New("not found")
	ErrMissingLocationDetail = errors.New("missing location detail")
	ErrItemNotApproved       = errors.New("item not approved")
	ErrInvalidStatus         = errors.New("invalid status")
)

// Error 带用户文案的领域错误
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func E(kind error, msg string) error { return &Error{Kind: kind, Msg: msg} }
