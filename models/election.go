package models

import (
	"time"

	"gorm.io/gorm"
)

// ElectionStatus 选举生命周期状态
type ElectionStatus string

const (
	StatusPending  ElectionStatus = "pending"  // 未开始
	StatusActive   ElectionStatus = "active"   // 投票进行中
	StatusFinished ElectionStatus = "finished" // 投票时间已结束
	StatusClosed   ElectionStatus = "closed"   // 管理员手动关闭，终态
)

// Visibility 选举可见性
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Election represents a time-boxed election
type Election struct {
	gorm.Model
	Title string `gorm:"not null" json:"title"`
	// StartDate/EndDate are calendar dates ("2006-01-02"); the time of day
	// comes from StartTime/EndTime interpreted in Timezone.
	StartDate  string              `gorm:"not null" json:"start_date"`
	EndDate    string              `gorm:"not null" json:"end_date"`
	StartTime  string              `gorm:"not null" json:"start_time"` // "2:30 PM"
	EndTime    string              `gorm:"not null" json:"end_time"`   // "9:00 PM"
	Timezone   string              `gorm:"not null;default:UTC" json:"timezone"`
	Status     ElectionStatus      `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	Visibility Visibility          `gorm:"type:varchar(16);not null;default:public" json:"visibility"`
	CreatedBy  uint                `gorm:"not null;index" json:"created_by"`
	Candidates []ElectionCandidate `gorm:"foreignKey:ElectionID" json:"candidates,omitempty"`
}

// ElectionCandidate 选举候选人关联记录。
// 硬删除，软删除的残留行会挡住唯一索引上的重新添加。
type ElectionCandidate struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ElectionID uint      `gorm:"not null;uniqueIndex:idx_election_candidate" json:"election_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_election_candidate" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasCandidate reports whether userID is in the election's candidate set.
// Candidates must be preloaded.
func (e *Election) HasCandidate(userID uint) bool {
	for _, c := range e.Candidates {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// CandidateIDs returns the candidate user ids in insertion order.
func (e *Election) CandidateIDs() []uint {
	ids := make([]uint, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		ids = append(ids, c.UserID)
	}
	return ids
}

// ElectionRole 用户在某一选举中的角色，区别于任何全局账号角色
type ElectionRole struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_election_role" json:"user_id"`
	ElectionID uint      `gorm:"not null;uniqueIndex:idx_user_election_role" json:"election_id"`
	Role       string    `gorm:"type:varchar(16);not null" json:"role"` // voter / candidate / admin
	CreatedAt  time.Time `json:"created_at"`
}

const (
	RoleVoter     = "voter"
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)
