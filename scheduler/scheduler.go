package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"couple_kitchen/config"
	"couple_kitchen/logger"
	"couple_kitchen/models"
)

// RetentionStore 历史清单清理需要的存储能力
type RetentionStore interface {
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// 任务类型
type TaskType int

const (
	TaskRetention TaskType = iota
)

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	NextRun     time.Time
	IsRunning   bool
	Description string
	LastDeleted int64
	LastError   string
}

// 任务调度器
type Scheduler struct {
	cfg     *config.Config
	store   RetentionStore
	cron    *cron.Cron
	entries map[TaskType]cron.EntryID
	tasks   map[TaskType]*TaskStatus
	mutex   sync.Mutex
	now     func() time.Time
}

// 创建新的调度器
func NewScheduler(cfg *config.Config, store RetentionStore) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		store:   store,
		cron:    cron.New(),
		entries: make(map[TaskType]cron.EntryID),
		tasks:   make(map[TaskType]*TaskStatus),
		now:     time.Now,
	}
}

// 启动调度器，保留天数 <= 0 时不启动，返回 nil
func Start(cfg *config.Config, store RetentionStore) (*Scheduler, error) {
	if cfg.Retention.Days <= 0 {
		logger.Info("未配置清单保留天数，跳过清理任务")
		return nil, nil
	}

	s := NewScheduler(cfg, store)
	if err := s.initTasks(); err != nil {
		return nil, err
	}
	s.cron.Start()
	s.refreshNextRun(TaskRetention)

	logger.Info("调度器已启动", "task_count", len(s.tasks), "cron", cfg.Retention.Cron)
	return s, nil
}

// 初始化任务
func (s *Scheduler) initTasks() error {
	id, err := s.cron.AddFunc(s.cfg.Retention.Cron, func() {
		s.runTask(context.Background(), TaskRetention)
	})
	if err != nil {
		return fmt.Errorf("无效的清理任务表达式 %q: %w", s.cfg.Retention.Cron, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[TaskRetention] = id
	s.tasks[TaskRetention] = &TaskStatus{
		Description: fmt.Sprintf("清理 %d 天前的购物清单 (%s)", s.cfg.Retention.Days, s.cfg.Retention.Cron),
	}
	return nil
}

// 运行任务，上一次还没结束时直接跳过
func (s *Scheduler) runTask(ctx context.Context, taskType TaskType) {
	s.mutex.Lock()
	status, ok := s.tasks[taskType]
	if !ok || status.IsRunning {
		s.mutex.Unlock()
		return
	}
	status.IsRunning = true
	description := status.Description
	s.mutex.Unlock()

	now := s.now()
	logger.Info("开始执行任务", "task", description)

	var (
		deleted int64
		err     error
	)
	switch taskType {
	case TaskRetention:
		before := RetentionCutoff(now, s.cfg.Retention.Days)
		deleted, err = s.store.DeleteBefore(ctx, before)
	}

	s.mutex.Lock()
	status.IsRunning = false
	status.LastRun = now
	status.LastDeleted = deleted
	status.LastError = ""
	if err != nil {
		status.LastError = err.Error()
	}
	s.mutex.Unlock()
	s.refreshNextRun(taskType)

	if err != nil {
		logger.Error("任务执行失败", "task", description, "error", err)
		return
	}
	logger.Info("任务执行完成", "task", description, "deleted", deleted)
}

func (s *Scheduler) refreshNextRun(taskType TaskType) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id, ok := s.entries[taskType]
	if !ok {
		return
	}
	if status, ok := s.tasks[taskType]; ok {
		status.NextRun = s.cron.Entry(id).Next
	}
}

// Status 返回任务状态快照
func (s *Scheduler) Status() map[TaskType]TaskStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make(map[TaskType]TaskStatus, len(s.tasks))
	for k, v := range s.tasks {
		out[k] = *v
	}
	return out
}

// Stop 停止调度，返回的 context 在正在执行的任务结束后关闭
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RetentionCutoff 保留今天在内的最近 days 天，返回最早保留的日期
func RetentionCutoff(now time.Time, days int) time.Time {
	today, _ := models.ParseListDate(models.FormatListDate(now))
	return today.AddDate(0, 0, -(days - 1))
}
