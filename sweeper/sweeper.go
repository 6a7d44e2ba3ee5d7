// Package sweeper 周期性扫描全部选举并应用到期的状态转移。
package sweeper

import (
	"context"
	"log"
	"time"

	"online-voting-backend/lifecycle"
	"online-voting-backend/models"
	"online-voting-backend/repository"
)

// DefaultInterval 扫描周期
const DefaultInterval = 1 * time.Minute

// lockName 多实例部署下同一时刻只有一个实例执行扫描
const lockName = "sweeper:elections"

// Locker 扫描周期的互斥锁。锁只是减少重复工作的优化，
// 正确性由仓库层的条件状态更新保证。
type Locker interface {
	WithLock(lockName string, expiry time.Duration, action func() error) error
}

// Outcome 单个选举的转移结果
type Outcome struct {
	Transition lifecycle.Transition `json:"transition"`
	Err        error                `json:"-"`
	ErrMsg     string               `json:"error,omitempty"`
}

// Sweeper 选举状态扫描器
type Sweeper struct {
	elections repository.ElectionRepository
	interval  time.Duration
	locker    Locker

	// onTransition 每次成功转移后的回调（推送实时更新用），可为nil
	onTransition func(tr lifecycle.Transition)
}

// New 创建扫描器，locker可为nil（单实例部署）
func New(elections repository.ElectionRepository, locker Locker) *Sweeper {
	return &Sweeper{
		elections: elections,
		interval:  DefaultInterval,
		locker:    locker,
	}
}

// SetInterval 覆盖默认扫描周期
func (s *Sweeper) SetInterval(d time.Duration) {
	s.interval = d
}

// OnTransition 注册转移成功后的回调
func (s *Sweeper) OnTransition(fn func(tr lifecycle.Transition)) {
	s.onTransition = fn
}

// Run 按固定周期执行扫描直到ctx取消
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("选举状态扫描器已启动，周期 %v", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("选举状态扫描器已停止")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep 执行一轮扫描，有锁时在锁内执行
func (s *Sweeper) sweep(ctx context.Context) {
	if s.locker == nil {
		s.RunOnce(ctx, time.Now())
		return
	}

	err := s.locker.WithLock(lockName, s.interval, func() error {
		s.RunOnce(ctx, time.Now())
		return nil
	})
	if err != nil {
		// 拿不到锁说明另一个实例正在扫描，下个周期再试
		log.Printf("本轮扫描跳过: %v", err)
	}
}

// RunOnce 执行一轮完整扫描。整轮使用同一个now，避免不同记录
// 之间出现时间偏差。单个选举的失败只记录日志，不中断本轮。
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) []Outcome {
	var outcomes []Outcome

	// pending → active
	pending, err := s.elections.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		log.Printf("获取pending选举失败: %v", err)
	} else {
		for i := range pending {
			outcomes = append(outcomes, s.apply(ctx, &pending[i], now, lifecycle.TryActivate))
		}
	}

	// active → finished
	active, err := s.elections.ListByStatus(ctx, models.StatusActive)
	if err != nil {
		log.Printf("获取active选举失败: %v", err)
	} else {
		for i := range active {
			outcomes = append(outcomes, s.apply(ctx, &active[i], now, lifecycle.TryFinish))
		}
	}

	applied := 0
	for _, o := range outcomes {
		if o.Err == nil && o.Transition.Applied {
			applied++
		}
	}
	if applied > 0 {
		log.Printf("本轮扫描完成 %d 个状态转移", applied)
	}

	return outcomes
}

// apply 对单个选举计算并提交一次转移
func (s *Sweeper) apply(ctx context.Context, e *models.Election, now time.Time,
	attempt func(*models.Election, time.Time) (lifecycle.Transition, error)) Outcome {

	tr, err := attempt(e, now)
	if err != nil {
		// 时间字符串损坏等个别记录的问题不能让整轮扫描停下
		log.Printf("选举 %d 转移计算失败: %v", e.ID, err)
		return Outcome{Transition: lifecycle.Transition{ElectionID: e.ID, From: e.Status}, Err: err, ErrMsg: err.Error()}
	}

	if !tr.Applied {
		// 还没到时间，正常空转
		return Outcome{Transition: tr}
	}

	applied, err := s.elections.UpdateStatusIf(ctx, e.ID, tr.From, tr.To)
	if err != nil {
		log.Printf("选举 %d 状态转移持久化失败: %v", e.ID, err)
		return Outcome{Transition: tr, Err: err, ErrMsg: err.Error()}
	}
	if !applied {
		// 另一轮扫描抢先完成了转移，不算失败
		tr.Applied = false
		tr.Reason = "superseded"
		return Outcome{Transition: tr}
	}

	log.Printf("选举 %d 状态已从 %s 转为 %s", e.ID, tr.From, tr.To)
	if s.onTransition != nil {
		s.onTransition(tr)
	}
	return Outcome{Transition: tr}
}
