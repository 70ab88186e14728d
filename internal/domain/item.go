package domain

import (
	"strings"
	"time"
)

const (
	ReportedAsLost  = "lost"
	ReportedAsFound = "found"
)

// 解决状态（空 = 未处理）
const (
	ResolutionContacted = "contacted"
	ResolutionReturned  = "returned"
	ResolutionClosed    = "closed"
)

// VisibilityWindow 已解决条目在公开列表继续展示的时长
const VisibilityWindow = 24 * time.Hour

// Item 失物/拾物登记。approved 翻转一次；archived 由清理任务翻转一次并清空 image。
type Item struct {
	ID                     string     `gorm:"primaryKey;size:36" json:"_id"`
	Name                   string     `gorm:"size:191;not null" json:"name"`
	Category               string     `gorm:"size:64;not null" json:"category"`
	Description            string     `gorm:"type:text;not null" json:"description"`
	Image                  string     `gorm:"type:longtext" json:"image"` // base64，上限由请求体限制兜底
	ReportedAs             string     `gorm:"size:8;not null;default:lost" json:"reportedAs"`
	Location               string     `gorm:"size:128" json:"location"`
	LocationOtherText      string     `gorm:"size:191" json:"locationOtherText"`
	LocationSupportingText string     `gorm:"size:191" json:"locationSupportingText"`
	Approved               bool       `gorm:"not null;default:false;index" json:"approved"`
	Archived               bool       `gorm:"not null;default:false;index" json:"archived"`
	ResolutionStatus       string     `gorm:"size:16;not null;default:''" json:"resolutionStatus"`
	ResolutionAt           *time.Time `json:"resolutionAt"`
	CreatedByID            string     `gorm:"size:36;index" json:"-"`
	CreatedBy              *User      `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

func (Item) TableName() string { return "lost_items" }

// DisplayLocation "other" 用补充文本替代
func (i *Item) DisplayLocation() string {
	if strings.EqualFold(strings.TrimSpace(i.Location), "other") {
		if i.LocationOtherText != "" {
			return i.LocationOtherText
		}
		return "Other"
	}
	return i.Location
}

// Resolved 是否已进入解决状态
func (i *Item) Resolved() bool { return i.ResolutionStatus != "" }

// PubliclyVisible 公开列表可见性判定，与 ListApproved 的 SQL 过滤同一条规则：
// approved && !archived && (未解决 或 解决时间仍在窗口内)
func (i *Item) PubliclyVisible(now time.Time) bool {
	if !i.Approved || i.Archived {
		return false
	}
	if !i.Resolved() {
		return true
	}
	return i.ResolutionAt != nil && now.Sub(*i.ResolutionAt) < VisibilityWindow
}

type ItemRepository interface {
	Create(it *Item) error
	FindByID(id string) (*Item, error)
	// ListApproved 按可见性判定过滤，新→旧
	ListApproved(now time.Time) ([]Item, error)
	ListAll() ([]Item, error)
	ListPending() ([]Item, error)
	ListByOwner(userID string) ([]Item, error)
	// SetApproved 幂等；id 不存在返回 gorm.ErrRecordNotFound
	SetApproved(id string) (*Item, error)
	SetResolution(id, status string, at *time.Time) error
	// ArchiveCandidates 已解决、解决时间早于 cutoff 且未归档的条目
	ArchiveCandidates(cutoff time.Time) ([]Item, error)
	// MarkArchived 带 archived=false 守护的归档更新；返回是否真的由本次调用翻转
	MarkArchived(id string) (bool, error)
}

// ValidResolution 空串不算：归档候选只看三个有值状态
func ValidResolution(s string) bool {
	switch s {
	case ResolutionContacted, ResolutionReturned, ResolutionClosed:
		return true
	}
	return false
}
