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

// 公开列表的缓存键与 TTL（审批/认领状态变化/归档时主动失效）
const (
	approvedCacheKey = "lost:approved:v1"
	approvedCacheTTL = 15 * time.Second
)

type SubmitInput struct {
	Name                   string `json:"name"`
	Category               string `json:"category"`
	Description            string `json:"description"`
	Image                  string `json:"image"`
	ReportedAs             string `json:"reportedAs"`
	Location               string `json:"location"`
	LocationOtherText      string `json:"locationOtherText"`
	LocationSupportingText string `json:"locationSupportingText"`
}

// ItemService 失物登记：提交、各类列表、审批
type ItemService struct {
	items   domain.ItemRepository
	sweeper *Sweeper
	cache   *cache.Cache
	log     *zap.Logger
}

func NewItemService(items domain.ItemRepository, sweeper *Sweeper, c *cache.Cache, log *zap.Logger) *ItemService {
	return &ItemService{items: items, sweeper: sweeper, cache: c, log: log}
}

func (s *ItemService) Submit(in SubmitInput, userID string) (*domain.Item, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	description := strings.TrimSpace(in.Description)
	if name == "" || category == "" || description == "" {
		return nil, E(ErrMissingField, "name, category, and description are required.")
	}

	location := strings.TrimSpace(in.Location)
	otherText := strings.TrimSpace(in.LocationOtherText)
	if strings.EqualFold(location, "other") && otherText == "" {
		return nil, E(ErrMissingLocationDetail, "Please describe the location when selecting Other.")
	}

	reportedAs := domain.ReportedAsLost
	if in.ReportedAs == domain.ReportedAsFound {
		reportedAs = domain.ReportedAsFound
	}

	it := &domain.Item{
		ID:                     utils.NewID(),
		Name:                   name,
		Category:               category,
		Description:            description,
		Image:                  in.Image,
		ReportedAs:             reportedAs,
		Location:               location,
		LocationOtherText:      otherText,
		LocationSupportingText: strings.TrimSpace(in.LocationSupportingText),
		Approved:               false,
		Archived:               false,
		CreatedByID:            userID,
	}
	if err := s.items.Create(it); err != nil {
		return nil, err
	}
	return it, nil
}

// ListApproved 公开列表。读之前触发一次归档清理；
// 有 redis 时结果短 TTL 缓存（singleflight 合并回源）。
func (s *ItemService) ListApproved(ctx context.Context) ([]domain.Item, error) {
	if n := s.sweeper.Run(ctx); n > 0 && s.cache != nil {
		s.cache.Del(ctx, approvedCacheKey)
	}
	if s.cache == nil {
		return s.items.ListApproved(time.Now())
	}
	return cache.GetOrLoadJSON(s.cache, ctx, approvedCacheKey, approvedCacheTTL,
		func(ctx context.Context) ([]domain.Item, error) {
			return s.items.ListApproved(time.Now())
		})
}

func (s *ItemService) ListAll() ([]domain.Item, error)     { return s.items.ListAll() }
func (s *ItemService) ListPending() ([]domain.Item, error) { return s.items.ListPending() }

func (s *ItemService) ListMine(userID string) ([]domain.Item, error) {
	return s.items.ListByOwner(userID)
}

func (s *ItemService) Approve(ctx context.Context, id string) (*domain.Item, error) {
	it, err := s.items.SetApproved(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, E(ErrNotFound, "Item not found.")
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Del(ctx, approvedCacheKey)
	}
	return it, nil
}
