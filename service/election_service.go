package service

import (
	"context"
	"time"

	"online-voting-backend/apperrors"
	"online-voting-backend/lifecycle"
	"online-voting-backend/models"
	"online-voting-backend/repository"
)

// DailyElectionLimit 免费用户每天可创建的选举数
const DailyElectionLimit = 2

// CreateElectionInput 创建选举的输入
type CreateElectionInput struct {
	Title      string            `json:"title" binding:"required"`
	StartDate  string            `json:"start_date" binding:"required"`
	EndDate    string            `json:"end_date" binding:"required"`
	StartTime  string            `json:"start_time" binding:"required"`
	EndTime    string            `json:"end_time" binding:"required"`
	Timezone   string            `json:"timezone"`
	Visibility models.Visibility `json:"visibility"`
	Candidates []uint            `json:"candidates"`
}

// ElectionService 选举管理服务
type ElectionService struct {
	elections repository.ElectionRepository
	users     repository.UserDirectory
	roles     repository.RoleRepository
}

// NewElectionService 创建选举服务
func NewElectionService(elections repository.ElectionRepository, users repository.UserDirectory, roles repository.RoleRepository) *ElectionService {
	return &ElectionService{
		elections: elections,
		users:     users,
		roles:     roles,
	}
}

// Create 创建选举，初始状态为pending
func (s *ElectionService) Create(ctx context.Context, creatorID uint, input CreateElectionInput) (*models.Election, error) {
	if input.Title == "" {
		return nil, apperrors.Validationf("title is required")
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	election := &models.Election{
		Title:      input.Title,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Timezone:   timezone,
		Status:     models.StatusPending,
		Visibility: visibility,
		CreatedBy:  creatorID,
	}

	// 校验时间字符串并保证开始时间点早于结束时间点
	if err := lifecycle.ValidateSchedule(election); err != nil {
		return nil, err
	}

	if err := s.checkDailyLimit(ctx, creatorID); err != nil {
		return nil, err
	}

	// 去重后建立候选人关联
	for _, userID := range dedupe(input.Candidates) {
		election.Candidates = append(election.Candidates, models.ElectionCandidate{UserID: userID})
	}

	if err := s.elections.Create(ctx, election); err != nil {
		return nil, err
	}

	// 创建者自动获得本选举的admin角色
	if err := s.roles.Ensure(ctx, creatorID, election.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	for _, c := range election.Candidates {
		if err := s.roles.Ensure(ctx, c.UserID, election.ID, models.RoleCandidate); err != nil {
			return nil, err
		}
	}

	return election, nil
}

// checkDailyLimit 免费用户每天限创建两个选举
func (s *ElectionService) checkDailyLimit(ctx context.Context, creatorID uint) error {
	user, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return err
	}
	if user.IsPaid {
		return nil
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	count, err := s.elections.CountCreatedBetween(ctx, creatorID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	if count >= DailyElectionLimit {
		return apperrors.Conflictf("daily limit of %d elections reached", DailyElectionLimit)
	}
	return nil
}

// Get 获取选举详情
func (s *ElectionService) Get(ctx context.Context, id uint) (*models.Election, error) {
	return s.elections.GetByID(ctx, id)
}

// List 获取全部选举
func (s *ElectionService) List(ctx context.Context) ([]models.Election, error) {
	return s.elections.List(ctx)
}

// UpdateSchedule 修改pending选举的标题和时间安排
func (s *ElectionService) UpdateSchedule(ctx context.Context, id uint, input CreateElectionInput) (*models.Election, error) {
	election, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 投票开始后时间安排不可再改
	if election.Status != models.StatusPending {
		return nil, apperrors.Preconditionf("election %d has already started", id)
	}

	if input.Title != "" {
		election.Title = input.Title
	}
	if input.StartDate != "" {
		election.StartDate = input.StartDate
	}
	if input.EndDate != "" {
		election.EndDate = input.EndDate
	}
	if input.StartTime != "" {
		election.StartTime = input.StartTime
	}
	if input.EndTime != "" {
		election.EndTime = input.EndTime
	}
	if input.Timezone != "" {
		election.Timezone = input.Timezone
	}

	if err := lifecycle.ValidateSchedule(election); err != nil {
		return nil, err
	}

	if err := s.elections.Update(ctx, election); err != nil {
		return nil, err
	}
	return election, nil
}

// Delete 删除选举
func (s *ElectionService) Delete(ctx context.Context, id uint) error {
	return s.elections.Delete(ctx, id)
}

// AddCandidates 向选举添加候选人，全部已存在时返回冲突
func (s *ElectionService) AddCandidates(ctx context.Context, electionID uint, userIDs []uint) (*models.Election, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	// 过滤掉已在候选人集合中的用户
	var newIDs []uint
	for _, userID := range dedupe(userIDs) {
		if !election.HasCandidate(userID) {
			newIDs = append(newIDs, userID)
		}
	}

	if len(newIDs) == 0 {
		return nil, apperrors.Conflictf("candidates already added to election %d", electionID)
	}

	// 候选人必须是已注册用户
	names, err := s.users.ResolveNames(ctx, newIDs)
	if err != nil {
		return nil, err
	}
	for _, userID := range newIDs {
		if _, ok := names[userID]; !ok {
			return nil, apperrors.NotFoundf("user %d not found", userID)
		}
	}

	if err := s.elections.AddCandidates(ctx, electionID, newIDs); err != nil {
		return nil, err
	}
	for _, userID := range newIDs {
		if err := s.roles.Ensure(ctx, userID, electionID, models.RoleCandidate); err != nil {
			return nil, err
		}
	}

	return s.elections.GetByID(ctx, electionID)
}

// RemoveCandidate 从选举移除候选人
func (s *ElectionService) RemoveCandidate(ctx context.Context, electionID, userID uint) error {
	if _, err := s.elections.GetByID(ctx, electionID); err != nil {
		return err
	}

	removed, err := s.elections.RemoveCandidate(ctx, electionID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NotFoundf("user %d is not a candidate in election %d", userID, electionID)
	}
	return nil
}

// Close 管理员手动关闭选举，closed是终态
func (s *ElectionService) Close(ctx context.Context, id uint) (*models.Election, error) {
	election, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tr, err := lifecycle.Close(election)
	if err != nil {
		return nil, err
	}

	applied, err := s.elections.UpdateStatusIf(ctx, id, tr.From, tr.To)
	if err != nil {
		return nil, err
	}
	if !applied {
		// 条件更新失败说明状态在读取后被并发修改，重新判断
		current, err := s.elections.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == models.StatusClosed {
			return nil, apperrors.Conflictf("election %d is already closed", id)
		}
		applied, err = s.elections.UpdateStatusIf(ctx, id, current.Status, models.StatusClosed)
		if err != nil {
			return nil, err
		}
		// 重试也输掉说明另一个关闭请求抢先完成
		if !applied {
			return nil, apperrors.Conflictf("election %d is already closed", id)
		}
	}

	return s.elections.GetByID(ctx, id)
}

// dedupe 去重并保持首次出现的顺序
func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
