// Package lifecycle 实现选举状态机的纯函数部分。
// 函数只读取选举实体并返回下一个状态的提交指令，不访问存储，
// 由repository层以条件更新的方式落库。
package lifecycle

import (
	"time"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
	"online-voting-backend/timeutil"
)

// Transition 一次状态转移的提交指令
type Transition struct {
	ElectionID uint                  `json:"election_id"`
	From       models.ElectionStatus `json:"from"`
	To         models.ElectionStatus `json:"to"`
	// Applied为false表示"还没到时间"，是正常的空转结果而不是错误
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

const (
	// ReasonNotDue 转移条件的时间点还没到
	ReasonNotDue = "not_due"
	// ReasonDue 时间点已到，转移应当提交
	ReasonDue = "due"
)

// ErrInvalidTransition 在错误的状态上调用转移操作属于调用方契约违反
var ErrInvalidTransition = apperrors.Preconditionf("invalid lifecycle transition for current status")

// StartInstant 解析选举的开始时间点
func StartInstant(e *models.Election) (time.Time, error) {
	return timeutil.ResolveDateString(e.StartDate, e.StartTime, e.Timezone)
}

// EndInstant 解析选举的结束时间点
func EndInstant(e *models.Election) (time.Time, error) {
	return timeutil.ResolveDateString(e.EndDate, e.EndTime, e.Timezone)
}

// TryActivate attempts the pending → active transition. Valid only on a
// pending election; before the resolved start instant it returns an
// unapplied transition with ReasonNotDue.
func TryActivate(e *models.Election, now time.Time) (Transition, error) {
	if e.Status != models.StatusPending {
		return Transition{}, ErrInvalidTransition
	}

	start, err := StartInstant(e)
	if err != nil {
		return Transition{}, err
	}

	tr := Transition{ElectionID: e.ID, From: models.StatusPending, To: models.StatusActive}
	if now.Before(start) {
		tr.Applied = false
		tr.Reason = ReasonNotDue
		return tr, nil
	}

	tr.Applied = true
	tr.Reason = ReasonDue
	return tr, nil
}

// TryFinish attempts the active → finished transition. Valid only on an
// active election; same not-due semantics as TryActivate.
func TryFinish(e *models.Election, now time.Time) (Transition, error) {
	if e.Status != models.StatusActive {
		return Transition{}, ErrInvalidTransition
	}

	end, err := EndInstant(e)
	if err != nil {
		return Transition{}, err
	}

	tr := Transition{ElectionID: e.ID, From: models.StatusActive, To: models.StatusFinished}
	if now.Before(end) {
		tr.Applied = false
		tr.Reason = ReasonNotDue
		return tr, nil
	}

	tr.Applied = true
	tr.Reason = ReasonDue
	return tr, nil
}

// Close 管理员手动关闭，除closed外任何状态都可达，closed是终态
func Close(e *models.Election) (Transition, error) {
	if e.Status == models.StatusClosed {
		return Transition{}, apperrors.Conflictf("election %d is already closed", e.ID)
	}

	return Transition{
		ElectionID: e.ID,
		From:       e.Status,
		To:         models.StatusClosed,
		Applied:    true,
	}, nil
}

// ValidateSchedule 校验创建时开始时间点必须严格早于结束时间点
func ValidateSchedule(e *models.Election) error {
	start, err := StartInstant(e)
	if err != nil {
		return err
	}
	end, err := EndInstant(e)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return apperrors.Validationf("start instant must be before end instant")
	}
	return nil
}
