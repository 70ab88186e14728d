package domain

import "time"

const (
	ClaimPending   = "pending"
	ClaimContacted = "contacted"
	ClaimReturned  = "returned"
	ClaimClosed    = "closed"
)

// Claim 认领请求。同一条目允许多条认领，由管理员人工合并。
type Claim struct {
	ID          string    `gorm:"primaryKey;size:36" json:"_id"`
	ItemID      string    `gorm:"size:36;not null;index" json:"-"`
	Item        *Item     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	ClaimedByID string    `gorm:"size:36;not null;index" json:"-"`
	ClaimedBy   *User     `gorm:"foreignKey:ClaimedByID" json:"claimedBy,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	ContactInfo string    `gorm:"size:191" json:"contactInfo"`
	Status      string    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Claim) TableName() string { return "claims" }

func ValidClaimStatus(s string) bool {
	switch s {
	case ClaimPending, ClaimContacted, ClaimReturned, ClaimClosed:
		return true
	}
	return false
}

// ClaimStatusRank 用于推导条目的 resolutionStatus（取该条目所有认领的最高档）
func ClaimStatusRank(s string) int {
	switch s {
	case ClaimContacted:
		return 1
	case ClaimReturned:
		return 2
	case ClaimClosed:
		return 3
	default:
		return 0
	}
}

type ClaimRepository interface {
	Create(c *Claim) error
	// FindByID 带 Item 与 ClaimedBy 预加载
	FindByID(id string) (*Claim, error)
	// ListAll 带 Item.CreatedBy 预加载（管理端需要同时看到失主与认领人），新→旧
	ListAll() ([]Claim, error)
	ListByItem(itemID string) ([]Claim, error)
	SetStatus(id, status string) (*Claim, error)
}
