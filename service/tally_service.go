package service

import (
	"context"
	"math"
	"sort"
	"time"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
	"online-voting-backend/repository"
)

// TallyService 把投票记录聚合为排名、百分比和胜者集合
type TallyService struct {
	votes     repository.VoteRepository
	elections repository.ElectionRepository
	users     repository.UserDirectory
}

// NewTallyService 创建统计服务
func NewTallyService(votes repository.VoteRepository, elections repository.ElectionRepository, users repository.UserDirectory) *TallyService {
	return &TallyService{
		votes:     votes,
		elections: elections,
		users:     users,
	}
}

// ComputeResults 计算最终结果。投票仍在进行时拒绝，
// 进行中的视图请使用ComputeLive。
func (s *TallyService) ComputeResults(ctx context.Context, electionID uint) (*models.Tally, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	if election.Status == models.StatusActive {
		return nil, apperrors.Preconditionf("election %d is still active, results are not final", electionID)
	}

	tally, err := s.computeTally(ctx, election)
	if err != nil {
		return nil, err
	}

	tally.Finalized = election.Status == models.StatusFinished || election.Status == models.StatusClosed
	return tally, nil
}

// ComputeLive 计算进行中的实时结果，任何状态下都允许
func (s *TallyService) ComputeLive(ctx context.Context, electionID uint) (*models.Tally, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	tally, err := s.computeTally(ctx, election)
	if err != nil {
		return nil, err
	}

	tally.Finalized = false
	return tally, nil
}

// VoterTurnout 返回选举的投票人数（每人最多一票，等于总票数）
func (s *TallyService) VoterTurnout(ctx context.Context, electionID uint) (int64, error) {
	if _, err := s.elections.GetByID(ctx, electionID); err != nil {
		return 0, err
	}
	return s.votes.CountByElection(ctx, electionID)
}

// computeTally 聚合核心。结果覆盖完整候选人集合，
// 没有票的候选人以0票出现；百分比四舍五入到两位小数；
// 排序为票数降序、平票按候选人ID升序。
func (s *TallyService) computeTally(ctx context.Context, election *models.Election) (*models.Tally, error) {
	counts, err := s.votes.CountsByCandidate(ctx, election.ID)
	if err != nil {
		return nil, err
	}

	var totalVotes int64
	counted := make(map[uint]int64, len(counts))
	for _, c := range counts {
		counted[c.CandidateID] = c.VoteCount
		totalVotes += c.VoteCount
	}

	candidateIDs := election.CandidateIDs()
	names, err := s.users.ResolveNames(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	results := make([]models.CandidateResult, 0, len(candidateIDs))
	for _, candidateID := range candidateIDs {
		count := counted[candidateID]

		percentage := 0.0
		if totalVotes > 0 {
			percentage = round2(float64(count) / float64(totalVotes) * 100)
		}

		name, ok := names[candidateID]
		if !ok {
			// 候选人账号已不存在时保留得票记录
			name = "Unknown"
		}

		results = append(results, models.CandidateResult{
			CandidateID: candidateID,
			Name:        name,
			VoteCount:   count,
			Percentage:  percentage,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].VoteCount != results[j].VoteCount {
			return results[i].VoteCount > results[j].VoteCount
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	// 胜者是票数等于最大票数的全部候选人，平票是合法结果；
	// 零票选举没有胜者
	var winners []models.CandidateResult
	if totalVotes > 0 && len(results) > 0 {
		maxVotes := results[0].VoteCount
		for _, r := range results {
			if r.VoteCount == maxVotes {
				winners = append(winners, r)
			}
		}
	}

	return &models.Tally{
		ElectionID: election.ID,
		TotalVotes: totalVotes,
		Results:    results,
		Winners:    winners,
		ComputedAt: time.Now(),
	}, nil
}

// round2 四舍五入到两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
