package user

import (
	"errors"
	"fmt"

	"github.com/SandipanKhanra/letschat/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email address is already registered")
)

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

func (s *Service) Create(user *User) error {
	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		if s.logger != nil {
			s.logger.Warn("user creation failed - email already registered")
		}
		return ErrEmailTaken
	}

	if err := s.db.Create(user).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to create user", zap.Error(err))
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user created",
			zap.Uint("user_id", user.ID))
	}

	return nil
}

func (s *Service) GetByID(id uint) (*User, error) {
	var user User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

func (s *Service) GetByEmail(email string) (*User, error) {
	var user User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

func (s *Service) UpdateProfile(id uint, update ProfileUpdate) (*User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if update.DisplayName != nil {
		updates["display_name"] = *update.DisplayName
	}
	if update.AvatarURL != nil {
		updates["avatar_url"] = *update.AvatarURL
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to update user profile",
				zap.Error(err),
				zap.Uint("user_id", id))
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user profile updated",
			zap.Uint("user_id", id))
	}

	return user, nil
}
