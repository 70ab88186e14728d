package repo

import (
	"time"

	"gorm.io/gorm"

	"findease-api/internal/domain"
)

type ItemRepo struct{ db *gorm.DB }

func NewItemRepo(db *gorm.DB) *ItemRepo { return &ItemRepo{db: db} }

func (r *ItemRepo) Create(it *domain.Item) error { return r.db.Create(it).Error }

func (r *ItemRepo) FindByID(id string) (*domain.Item, error) {
	var it domain.Item
	if err := r.db.First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// ListApproved 公开可见性过滤在 SQL 里完成：
// approved && !archived && (未解决 或 resolution_at 在窗口内)
func (r *ItemRepo) ListApproved(now time.Time) ([]domain.Item, error) {
	cutoff := now.Add(-domain.VisibilityWindow)
	var items []domain.Item
	err := r.db.Preload("CreatedBy").
		Where("approved = ? AND archived = ?", true, false).
		Where("resolution_status = '' OR resolution_at > ?", cutoff).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *ItemRepo) ListAll() ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.Preload("CreatedBy").Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *ItemRepo) ListPending() ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.Preload("CreatedBy").
		Where("approved = ?", false).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *ItemRepo) ListByOwner(userID string) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.Where("created_by_id = ?", userID).Order("created_at DESC").Find(&items).Error
	return items, err
}

// SetApproved 重复调用只是把 true 再写一遍，效果幂等
func (r *ItemRepo) SetApproved(id string) (*domain.Item, error) {
	var it domain.Item
	if err := r.db.First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&it).Update("approved", true).Error; err != nil {
		return nil, err
	}
	it.Approved = true
	return &it, nil
}

func (r *ItemRepo) SetResolution(id, status string, at *time.Time) error {
	return r.db.Model(&domain.Item{}).Where("id = ?", id).
		Updates(map[string]any{"resolution_status": status, "resolution_at": at}).Error
}

func (r *ItemRepo) ArchiveCandidates(cutoff time.Time) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.
		Where("resolution_status IN ?", []string{
			domain.ResolutionContacted, domain.ResolutionReturned, domain.ResolutionClosed,
		}).
		Where("resolution_at < ?", cutoff).
		Where("archived = ?", false).
		Find(&items).Error
	return items, err
}

// MarkArchived 守护更新：并发清理时只有把 archived 翻成 true 的那一次返回 true，
// 归档日志据此避免重复追加。
func (r *ItemRepo) MarkArchived(id string) (bool, error) {
	res := r.db.Model(&domain.Item{}).
		Where("id = ? AND archived = ?", id, false).
		Updates(map[string]any{"archived": true, "image": ""})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
