package services

import (
	"context"
	"errors"

	"github.com/justsurfingit/hireme-ai/internal/apperr"
	"github.com/justsurfingit/hireme-ai/internal/models"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// UpsertGitHubUser creates the user on first sign-in and refreshes the
// profile fields on later ones.
func (s *UserService) UpsertGitHubUser(ctx context.Context, profile models.User) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where(models.User{GitHubID: profile.GitHubID}).
		// a map so cleared profile fields overwrite the stored ones
		Assign(map[string]any{
			"login":      profile.Login,
			"name":       profile.Name,
			"email":      profile.Email,
			"avatar_url": profile.AvatarURL,
		}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, apperr.Internal("Failed to save user", err)
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch user", err)
	}
	return &user, nil
}
