package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"findease-api/internal/core/auth"
	"findease-api/internal/core/config"
	"findease-api/internal/domain"
	"findease-api/pkg/utils"
)

// AccountService 账号目录：域名限制的注册/登录 + 启动期管理员种子
type AccountService struct {
	users domain.UserRepository
	jwter *auth.JWTer
	cfg   config.Auth
	log   *zap.Logger
}

func NewAccountService(users domain.UserRepository, jwter *auth.JWTer, cfg config.Auth, log *zap.Logger) *AccountService {
	return &AccountService{users: users, jwter: jwter, cfg: cfg, log: log}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) domainAllowed(email string) bool {
	return strings.HasSuffix(NormalizeEmail(email), "@"+strings.ToLower(s.cfg.AllowedDomain))
}

func (s *AccountService) Register(name, email, password string) (domain.PublicUser, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(email) == "" || password == "" {
		return domain.PublicUser{}, "", E(ErrMissingField, "Name, email, and password are required.")
	}
	if !s.domainAllowed(email) {
		return domain.PublicUser{}, "", E(ErrDomainRejected,
			fmt.Sprintf("Only @%s email addresses can sign up.", s.cfg.AllowedDomain))
	}
	if len(password) < s.cfg.MinPasswordLen {
		return domain.PublicUser{}, "", E(ErrWeakCredential,
			fmt.Sprintf("Password must be at least %d characters.", s.cfg.MinPasswordLen))
	}

	norm := NormalizeEmail(email)
	existing, err := s.users.FindByEmail(norm)
	if err != nil {
		return domain.PublicUser{}, "", err
	}
	if existing != nil {
		return domain.PublicUser{}, "", E(ErrDuplicateAccount, "An account with this email already exists.")
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        norm,
		PasswordHash: utils.HashPassword(password),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(u); err != nil {
		// 并发注册撞上邮箱唯一索引：与先查后插发现的重复同样对待
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.PublicUser{}, "", E(ErrDuplicateAccount, "An account with this email already exists.")
		}
		return domain.PublicUser{}, "", err
	}

	tok, err := s.jwter.Issue(u.ID, u.Role)
	if err != nil {
		return domain.PublicUser{}, "", err
	}
	return u.Public(), tok, nil
}

func (s *AccountService) Login(email, password string) (domain.PublicUser, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.PublicUser{}, "", E(ErrMissingField, "Email and password are required.")
	}
	if !s.domainAllowed(email) {
		return domain.PublicUser{}, "", E(ErrDomainRejected,
			fmt.Sprintf("Only @%s email addresses can log in.", s.cfg.AllowedDomain))
	}

	u, err := s.users.FindByEmail(NormalizeEmail(email))
	if err != nil {
		return domain.PublicUser{}, "", err
	}
	// 查无此人与密码错误不区分，避免账号枚举
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return domain.PublicUser{}, "", E(ErrInvalidCredential, "Invalid email or password.")
	}

	tok, err := s.jwter.Issue(u.ID, u.Role)
	if err != nil {
		return domain.PublicUser{}, "", err
	}
	return u.Public(), tok, nil
}

// ResolveUser 中间件回调：token 里的 uid → 用户行。
// 用户已不存在按未认证处理。
func (s *AccountService) ResolveUser(uid string) (*domain.User, error) {
	u, err := s.users.FindByID(uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, E(ErrUnauthenticated, "User not found.")
	}
	return u, nil
}

// EnsureAdmin 启动期执行一次：无 admin 角色用户时按配置默认值建一个
func (s *AccountService) EnsureAdmin() error {
	n, err := s.users.CountByRole(domain.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	admin := &domain.User{
		ID:           utils.NewID(),
		Name:         s.cfg.AdminName,
		Email:        NormalizeEmail(s.cfg.AdminEmail),
		PasswordHash: utils.HashPassword(s.cfg.AdminPassword),
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(admin); err != nil {
		return err
	}
	s.log.Info("admin user created", zap.String("email", admin.Email))
	return nil
}
