package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"findease-api/internal/archive"
	"findease-api/internal/domain"
)

var itemsArchivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "findease_items_archived_total",
	Help: "Resolved items moved to the archive log",
})

func init() { prometheus.MustRegister(itemsArchivedTotal) }

// Sweeper 归档清理：解决超过保留窗口的条目写入归档日志、
// 清空图片并置 archived。由公开列表请求触发，不常驻后台。
type Sweeper struct {
	items     domain.ItemRepository
	sink      archive.Sink
	retention time.Duration
	log       *zap.Logger
	sf        singleflight.Group
}

func NewSweeper(items domain.ItemRepository, sink archive.Sink, retention time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{items: items, sink: sink, retention: retention, log: log}
}

// Run 返回本次归档条数。并发触发时 singleflight 合并为一次执行。
// 单条失败只记日志，不中断其它条目，也绝不上抛到触发它的请求。
func (s *Sweeper) Run(ctx context.Context) int {
	n, _, _ := s.sf.Do("sweep", func() (any, error) {
		return s.sweep(ctx), nil
	})
	return n.(int)
}

func (s *Sweeper) sweep(_ context.Context) int {
	now := time.Now()
	candidates, err := s.items.ArchiveCandidates(now.Add(-s.retention))
	if err != nil {
		s.log.Error("archive sweep query failed", zap.Error(err))
		return 0
	}

	archived := 0
	for i := range candidates {
		it := &candidates[i]

		// 先守护置位，抢到的那一次才写日志：并发清理不会重复追加
		ok, err := s.items.MarkArchived(it.ID)
		if err != nil {
			s.log.Error("archive mark failed", zap.String("item", it.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue // 已被另一次清理处理
		}

		if err := s.sink.Append(it, now); err != nil {
			// 条目已归档但日志缺一条；接受，优于重复记录
			s.log.Error("archive append failed", zap.String("item", it.ID), zap.Error(err))
		}
		archived++
		itemsArchivedTotal.Inc()
	}

	if archived > 0 {
		s.log.Info("archive sweep done", zap.Int("archived", archived))
	}
	return archived
}
