package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
)

// ElectionRepository 定义选举数据访问接口
type ElectionRepository interface {
	Create(ctx context.Context, election *models.Election) error
	GetByID(ctx context.Context, id uint) (*models.Election, error)
	List(ctx context.Context) ([]models.Election, error)
	ListByStatus(ctx context.Context, status models.ElectionStatus) ([]models.Election, error)
	Update(ctx context.Context, election *models.Election) error
	Delete(ctx context.Context, id uint) error

	// UpdateStatusIf 仅当当前存储状态仍为from时把状态改为to，
	// 返回是否真正发生了更新。并发的两次转移只有一次会成功。
	UpdateStatusIf(ctx context.Context, id uint, from, to models.ElectionStatus) (bool, error)

	// 候选人相关方法
	AddCandidates(ctx context.Context, electionID uint, userIDs []uint) error
	RemoveCandidate(ctx context.Context, electionID, userID uint) (bool, error)

	// CountCreatedBetween 统计某用户在时间段内创建的选举数
	CountCreatedBetween(ctx context.Context, creatorID uint, from, to time.Time) (int64, error)
}

// GormElectionRepository 基于GORM的选举数据仓库
type GormElectionRepository struct {
	db *gorm.DB
}

// NewElectionRepository 创建选举数据仓库
func NewElectionRepository(db *gorm.DB) *GormElectionRepository {
	return &GormElectionRepository{db: db}
}

// Create 创建选举及其候选人关联
func (r *GormElectionRepository) Create(ctx context.Context, election *models.Election) error {
	if err := r.db.WithContext(ctx).Create(election).Error; err != nil {
		return apperrors.Internalf(err, "failed to create election")
	}
	return nil
}

// GetByID 获取选举详情，包含候选人集合
func (r *GormElectionRepository) GetByID(ctx context.Context, id uint) (*models.Election, error) {
	var election models.Election
	err := r.db.WithContext(ctx).Preload("Candidates").First(&election, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("election %d not found", id)
		}
		return nil, apperrors.Internalf(err, "failed to load election %d", id)
	}
	return &election, nil
}

// List 获取全部选举，按创建时间倒序
func (r *GormElectionRepository) List(ctx context.Context) ([]models.Election, error) {
	var elections []models.Election
	err := r.db.WithContext(ctx).Preload("Candidates").Order("created_at desc").Find(&elections).Error
	if err != nil {
		return nil, apperrors.Internalf(err, "failed to list elections")
	}
	return elections, nil
}

// ListByStatus 按状态过滤选举，Sweeper每轮扫描用
func (r *GormElectionRepository) ListByStatus(ctx context.Context, status models.ElectionStatus) ([]models.Election, error) {
	var elections []models.Election
	err := r.db.WithContext(ctx).Where("status = ?", status).Find(&elections).Error
	if err != nil {
		return nil, apperrors.Internalf(err, "failed to list %s elections", status)
	}
	return elections, nil
}

// Update 保存选举字段修改
func (r *GormElectionRepository) Update(ctx context.Context, election *models.Election) error {
	if err := r.db.WithContext(ctx).Save(election).Error; err != nil {
		return apperrors.Internalf(err, "failed to update election %d", election.ID)
	}
	return nil
}

// Delete 删除选举
func (r *GormElectionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Election{}, id)
	if result.Error != nil {
		return apperrors.Internalf(result.Error, "failed to delete election %d", id)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("election %d not found", id)
	}
	return nil
}

// UpdateStatusIf 条件状态更新，RowsAffected为0说明状态已被别处改走
func (r *GormElectionRepository) UpdateStatusIf(ctx context.Context, id uint, from, to models.ElectionStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)

	if result.Error != nil {
		return false, apperrors.Internalf(result.Error, "failed to transition election %d to %s", id, to)
	}
	return result.RowsAffected > 0, nil
}

// AddCandidates 批量添加候选人关联
func (r *GormElectionRepository) AddCandidates(ctx context.Context, electionID uint, userIDs []uint) error {
	rows := make([]models.ElectionCandidate, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, models.ElectionCandidate{ElectionID: electionID, UserID: userID})
	}

	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if IsDuplicateKey(err) {
			return apperrors.Conflictf("candidate already present in election %d", electionID)
		}
		return apperrors.Internalf(err, "failed to add candidates to election %d", electionID)
	}
	return nil
}

// RemoveCandidate 移除候选人关联，返回是否存在该关联
func (r *GormElectionRepository) RemoveCandidate(ctx context.Context, electionID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("election_id = ? AND user_id = ?", electionID, userID).
		Delete(&models.ElectionCandidate{})

	if result.Error != nil {
		return false, apperrors.Internalf(result.Error, "failed to remove candidate %d from election %d", userID, electionID)
	}
	return result.RowsAffected > 0, nil
}

// CountCreatedBetween 统计创建者在时间段内创建的选举数量
func (r *GormElectionRepository) CountCreatedBetween(ctx context.Context, creatorID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("created_by = ? AND created_at >= ? AND created_at <= ?", creatorID, from, to).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Internalf(err, "failed to count elections for creator %d", creatorID)
	}
	return count, nil
}
