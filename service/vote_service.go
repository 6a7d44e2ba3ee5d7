package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
	"online-voting-backend/repository"
)

// VoteService 投票台账服务，保证一人一票
type VoteService struct {
	votes     repository.VoteRepository
	elections repository.ElectionRepository
	roles     repository.RoleRepository
}

// NewVoteService 创建投票服务
func NewVoteService(votes repository.VoteRepository, elections repository.ElectionRepository, roles repository.RoleRepository) *VoteService {
	return &VoteService{
		votes:     votes,
		elections: elections,
		roles:     roles,
	}
}

// CastVote 投出一票。前置条件按顺序检查，各自返回不同类别的错误：
// 选举存在(NotFound) → 状态为active(Precondition) →
// 候选人属于该选举(NotFound) → 未曾投过票(Conflict)。
// 已投票的预检查只是优化，唯一约束才是防止并发重复投票的最终依据。
func (s *VoteService) CastVote(ctx context.Context, voterID, electionID, candidateID uint) (*models.Vote, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	if election.Status != models.StatusActive {
		return nil, apperrors.Preconditionf("election %d is not active", electionID)
	}

	if !election.HasCandidate(candidateID) {
		return nil, apperrors.NotFoundf("user %d is not a candidate in election %d", candidateID, electionID)
	}

	hasVoted, err := s.votes.HasVoted(ctx, voterID, electionID)
	if err != nil {
		return nil, err
	}
	if hasVoted {
		return nil, apperrors.Conflictf("user %d has already voted in election %d", voterID, electionID)
	}

	vote := &models.Vote{
		ReceiptID:   uuid.NewString(),
		UserID:      voterID,
		ElectionID:  electionID,
		CandidateID: candidateID,
	}
	// 并发下重复插入在这里被唯一约束拦下并翻译为ConflictError
	if err := s.votes.Create(ctx, vote); err != nil {
		return nil, err
	}

	// 票已经落库，voter角色记录失败不能再让调用方以为投票失败，
	// 台账才是权威数据，角色关系只记日志
	if err := s.roles.Ensure(ctx, voterID, electionID, models.RoleVoter); err != nil {
		log.Printf("记录用户 %d 在选举 %d 的voter角色失败: %v", voterID, electionID, err)
	}

	return vote, nil
}

// HasVoted 查询用户在某选举中是否已投票
func (s *VoteService) HasVoted(ctx context.Context, voterID, electionID uint) (bool, error) {
	if _, err := s.elections.GetByID(ctx, electionID); err != nil {
		return false, err
	}
	return s.votes.HasVoted(ctx, voterID, electionID)
}

// CountVotes 统计选举总票数
func (s *VoteService) CountVotes(ctx context.Context, electionID uint) (int64, error) {
	if _, err := s.elections.GetByID(ctx, electionID); err != nil {
		return 0, err
	}
	return s.votes.CountByElection(ctx, electionID)
}
