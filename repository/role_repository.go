package repository

import (
	"context"

	"gorm.io/gorm"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
)

// RoleRepository 维护用户在单个选举中的角色关系
type RoleRepository interface {
	// Ensure 幂等地写入角色记录，已存在时不报错
	Ensure(ctx context.Context, userID, electionID uint, role string) error
	ListByElection(ctx context.Context, electionID uint) ([]models.ElectionRole, error)
}

// GormRoleRepository 基于GORM的角色仓库
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓库
func NewRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// Ensure 写入角色记录，(user_id, election_id) 唯一冲突视为已存在
func (r *GormRoleRepository) Ensure(ctx context.Context, userID, electionID uint, role string) error {
	row := models.ElectionRole{UserID: userID, ElectionID: electionID, Role: role}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil
		}
		return apperrors.Internalf(err, "failed to record %s role for user %d", role, userID)
	}
	return nil
}

// ListByElection 列出选举的全部角色记录
func (r *GormRoleRepository) ListByElection(ctx context.Context, electionID uint) ([]models.ElectionRole, error) {
	var roles []models.ElectionRole
	err := r.db.WithContext(ctx).Where("election_id = ?", electionID).Find(&roles).Error
	if err != nil {
		return nil, apperrors.Internalf(err, "failed to list roles for election %d", electionID)
	}
	return roles, nil
}
