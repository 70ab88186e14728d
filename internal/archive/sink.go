// Package archive 负责已解决条目的落盘归档：追加写的纯文本日志，
// 独立于数据库，归档后条目的图片被清空。
package archive

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"findease-api/internal/domain"
)

// Sink 归档出口。实现必须是追加写，不得改写既有记录。
type Sink interface {
	Append(it *domain.Item, archivedAt time.Time) error
}

// FileSink 本地文件实现，一条记录一个分隔块。
type FileSink struct {
	path string
	mu   sync.Mutex
}

func NewFileSink(path string) *FileSink { return &FileSink{path: path} }

func (s *FileSink) Append(it *domain.Item, archivedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(FormatEntry(it, archivedAt))
	return err
}

// FormatEntry 归档记录文本。图片内容不落盘，只留一行删除说明。
func FormatEntry(it *domain.Item, archivedAt time.Time) string {
	resolvedAt := ""
	if it.ResolutionAt != nil {
		resolvedAt = it.ResolutionAt.UTC().Format(time.RFC3339)
	}
	return strings.Join([]string{
		"----------------------------------------",
		"Archived at: " + archivedAt.UTC().Format(time.RFC3339),
		"Item ID: " + it.ID,
		"Name: " + it.Name,
		"Category: " + it.Category,
		"Description: " + it.Description,
		"Location: " + it.DisplayLocation(),
		"Location supporting: " + it.LocationSupportingText,
		"Resolution: " + it.ResolutionStatus,
		"Resolved at: " + resolvedAt,
		"Report created: " + it.CreatedAt.UTC().Format(time.RFC3339),
		"(Image removed as per policy)",
		"",
	}, "\n") + "\n"
}
