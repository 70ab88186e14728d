package repo

import (
	"gorm.io/gorm"

	"findease-api/internal/domain"
)

type ClaimRepo struct{ db *gorm.DB }

func NewClaimRepo(db *gorm.DB) *ClaimRepo { return &ClaimRepo{db: db} }

func (r *ClaimRepo) Create(c *domain.Claim) error { return r.db.Create(c).Error }

func (r *ClaimRepo) FindByID(id string) (*domain.Claim, error) {
	var c domain.Claim
	err := r.db.Preload("Item").Preload("ClaimedBy").First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListAll 管理端视图：连同条目、认领人、以及条目的原登记人一起取出
func (r *ClaimRepo) ListAll() ([]domain.Claim, error) {
	var cs []domain.Claim
	err := r.db.Preload("Item").Preload("Item.CreatedBy").Preload("ClaimedBy").
		Order("created_at DESC").
		Find(&cs).Error
	return cs, err
}

func (r *ClaimRepo) ListByItem(itemID string) ([]domain.Claim, error) {
	var cs []domain.Claim
	err := r.db.Where("item_id = ?", itemID).Find(&cs).Error
	return cs, err
}

// SetStatus 无条件覆盖（允许管理员回退状态）
func (r *ClaimRepo) SetStatus(id, status string) (*domain.Claim, error) {
	var c domain.Claim
	if err := r.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&c).Update("status", status).Error; err != nil {
		return nil, err
	}
	return r.FindByID(id)
}
