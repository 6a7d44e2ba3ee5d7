package models

import (
	"time"
)

// Vote 投票记录，创建后不可修改
type Vote struct {
	ID uint `gorm:"primarykey" json:"id"`
	// ReceiptID is an opaque identifier handed back to the voter.
	ReceiptID   string    `gorm:"type:varchar(36);not null" json:"receipt_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_election_vote" json:"user_id"`
	ElectionID  uint      `gorm:"not null;uniqueIndex:idx_user_election_vote;index" json:"election_id"`
	CandidateID uint      `gorm:"not null" json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// User 用户目录记录，核心只用它把候选人ID解析为显示名称
type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	FullName string `gorm:"not null" json:"full_name"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	// IsPaid lifts the per-day election creation limit.
	IsPaid    bool      `gorm:"default:false" json:"is_paid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CandidateResult 单个候选人的统计结果
type CandidateResult struct {
	CandidateID uint    `json:"candidate_id"`
	Name        string  `json:"name"`
	VoteCount   int64   `json:"vote_count"`
	Percentage  float64 `json:"percentage"`
}

// Tally 一次选举的聚合结果
type Tally struct {
	ElectionID uint              `json:"election_id"`
	TotalVotes int64             `json:"total_votes"`
	Results    []CandidateResult `json:"results"`
	Winners    []CandidateResult `json:"winners,omitempty"`
	// Finalized is false for live views computed while voting may continue.
	Finalized  bool      `json:"finalized"`
	ComputedAt time.Time `json:"computed_at"`
}

// WebSocketMessage 定义WebSocket消息格式
type WebSocketMessage struct {
	Type       string      `json:"type"`
	ElectionID uint        `json:"electionId"`
	Payload    interface{} `json:"payload"`
}
