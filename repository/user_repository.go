package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
)

// UserDirectory 用户目录接口。核心只依赖它把用户ID解析为显示名称，
// 身份认证由外部系统完成，这里不出现任何会话概念。
type UserDirectory interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// ResolveNames 批量解析显示名称，未找到的ID不在返回的map中
	ResolveNames(ctx context.Context, ids []uint) (map[uint]string, error)
}

// GormUserDirectory 基于GORM的用户目录实现
type GormUserDirectory struct {
	db *gorm.DB
}

// NewUserDirectory 创建用户目录
func NewUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

// GetByID 获取单个用户
func (r *GormUserDirectory) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user %d not found", id)
		}
		return nil, apperrors.Internalf(err, "failed to load user %d", id)
	}
	return &user, nil
}

// ResolveNames 批量解析显示名称
func (r *GormUserDirectory) ResolveNames(ctx context.Context, ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, apperrors.Internalf(err, "failed to resolve user names")
	}

	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names, nil
}
