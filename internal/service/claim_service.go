package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"findease-api/internal/core/cache"
	"findease-api/internal/domain"
	"findease-api/pkg/utils"
)

// ClaimWithOwner 管理端视图：认领记录加上条目原登记人（派生字段，不落库）
type ClaimWithOwner struct {
	domain.Claim
	Owner *domain.PublicUser `json:"owner"`
}

// ClaimService 认领流程：提交、管理端列表、状态流转
type ClaimService struct {
	claims domain.ClaimRepository
	items  domain.ItemRepository
	cache  *cache.Cache
	log    *zap.Logger
}

func NewClaimService(claims domain.ClaimRepository, items domain.ItemRepository, c *cache.Cache, log *zap.Logger) *ClaimService {
	return &ClaimService{claims: claims, items: items, cache: c, log: log}
}

// File 针对已审批条目提交认领；条目未审批直接拒绝
func (s *ClaimService) File(itemID, claimantID, message, contactInfo string) (*domain.Claim, error) {
	message = strings.TrimSpace(message)
	if itemID == "" || message == "" {
		return nil, E(ErrMissingField, "itemId and message are required.")
	}

	it, err := s.items.FindByID(itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, E(ErrNotFound, "Item not found.")
	}
	if err != nil {
		return nil, err
	}
	if !it.Approved {
		return nil, E(ErrItemNotApproved, "You can only claim approved items.")
	}

	c := &domain.Claim{
		ID:          utils.NewID(),
		ItemID:      it.ID,
		ClaimedByID: claimantID,
		Message:     message,
		ContactInfo: strings.TrimSpace(contactInfo),
		Status:      domain.ClaimPending,
	}
	if err := s.claims.Create(c); err != nil {
		return nil, err
	}
	// 返回带条目与认领人的完整视图
	return s.claims.FindByID(c.ID)
}

// ListAll 每条认领补上条目登记人，管理员才能同时联系双方
func (s *ClaimService) ListAll() ([]ClaimWithOwner, error) {
	cs, err := s.claims.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]ClaimWithOwner, 0, len(cs))
	for _, c := range cs {
		row := ClaimWithOwner{Claim: c}
		if c.Item != nil && c.Item.CreatedBy != nil {
			p := c.Item.CreatedBy.Public()
			row.Owner = &p
		}
		out = append(out, row)
	}
	return out, nil
}

// SetStatus 覆盖式写入（允许回退），随后重推条目的 resolutionStatus
func (s *ClaimService) SetStatus(ctx context.Context, id, status string) (*domain.Claim, error) {
	if !domain.ValidClaimStatus(status) {
		return nil, E(ErrInvalidStatus, "Invalid status.")
	}
	c, err := s.claims.SetStatus(id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, E(ErrNotFound, "Claim not found.")
	}
	if err != nil {
		return nil, err
	}

	if err := s.deriveResolution(c.ItemID); err != nil {
		// 派生失败不影响认领本身的更新结果
		s.log.Warn("derive item resolution failed", zap.String("item", c.ItemID), zap.Error(err))
	}
	if s.cache != nil {
		s.cache.Del(ctx, approvedCacheKey)
	}
	return c, nil
}

// deriveResolution 条目的 resolutionStatus 取其所有认领状态的最高档；
// 全部回到 pending 时清空（条目并未实际处理）。
func (s *ClaimService) deriveResolution(itemID string) error {
	it, err := s.items.FindByID(itemID)
	if err != nil {
		return err
	}
	cs, err := s.claims.ListByItem(itemID)
	if err != nil {
		return err
	}

	best := ""
	for _, c := range cs {
		if domain.ClaimStatusRank(c.Status) > domain.ClaimStatusRank(best) {
			best = c.Status
		}
	}
	if best == it.ResolutionStatus {
		return nil
	}

	var at *time.Time
	if best != "" {
		now := time.Now()
		at = &now
	}
	return s.items.SetResolution(itemID, best, at)
}
