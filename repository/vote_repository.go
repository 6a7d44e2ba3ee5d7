package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
)

// CandidateCount 某候选人的票数聚合行
type CandidateCount struct {
	CandidateID uint  `json:"candidate_id"`
	VoteCount   int64 `json:"vote_count"`
}

// VoteRepository 定义投票记录数据访问接口。
// 记录只增不改，没有更新方法。
type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
	HasVoted(ctx context.Context, userID, electionID uint) (bool, error)
	CountByElection(ctx context.Context, electionID uint) (int64, error)

	// CountsByCandidate 按候选人分组统计票数，
	// 票数降序、候选人ID升序（显式的平票次序）
	CountsByCandidate(ctx context.Context, electionID uint) ([]CandidateCount, error)
}

// GormVoteRepository 基于GORM的投票数据仓库
type GormVoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository 创建投票数据仓库
func NewVoteRepository(db *gorm.DB) *GormVoteRepository {
	return &GormVoteRepository{db: db}
}

// Create 写入一条投票记录。(user_id, election_id) 唯一约束
// 是防止重复投票的最终依据，冲突翻译为ConflictError。
func (r *GormVoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	if err := r.db.WithContext(ctx).Create(vote).Error; err != nil {
		if IsDuplicateKey(err) {
			return apperrors.Conflictf("user %d has already voted in election %d", vote.UserID, vote.ElectionID)
		}
		return apperrors.Internalf(err, "failed to create vote")
	}
	return nil
}

// HasVoted 查询用户是否已在该选举中投票
func (r *GormVoteRepository) HasVoted(ctx context.Context, userID, electionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("user_id = ? AND election_id = ?", userID, electionID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Internalf(err, "failed to check vote status")
	}
	return count > 0, nil
}

// CountByElection 统计选举的总票数
func (r *GormVoteRepository) CountByElection(ctx context.Context, electionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("election_id = ?", electionID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Internalf(err, "failed to count votes for election %d", electionID)
	}
	return count, nil
}

// CountsByCandidate 分组聚合票数
func (r *GormVoteRepository) CountsByCandidate(ctx context.Context, electionID uint) ([]CandidateCount, error) {
	var counts []CandidateCount
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("candidate_id, COUNT(*) as vote_count").
		Where("election_id = ?", electionID).
		Group("candidate_id").
		Order("vote_count DESC, candidate_id ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, apperrors.Internalf(err, "failed to aggregate votes for election %d", electionID)
	}
	return counts, nil
}

// IsDuplicateKey 判断错误是否为唯一约束冲突。
// 开启TranslateError后GORM会返回ErrDuplicatedKey，
// 字符串匹配兜底覆盖未翻译的MySQL/SQLite原生错误。
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
