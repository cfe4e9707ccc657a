package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/justsurfingit/hireme-ai/internal/apperr"
	"github.com/justsurfingit/hireme-ai/internal/dtos"
	"github.com/justsurfingit/hireme-ai/internal/models"
	"github.com/justsurfingit/hireme-ai/internal/validation"
	"gorm.io/gorm"
)

// skillCategory is used for skills saved from a plain list of names.
const skillCategory = "technical"

type ApplicationService struct {
	DB *gorm.DB
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{
		DB: db,
	}
}

// Create stores an application and its skills for userID.
func (s *ApplicationService) Create(ctx context.Context, userID uint, req *dtos.ApplicationCreateRequest) (*models.Application, error) {
	status := models.StatusSaved
	if req.Status != "" {
		status = models.ApplicationStatus(req.Status)
	}

	app := &models.Application{
		Title:       validation.Sanitize(strings.TrimSpace(req.Title), validation.MaxTitleLen),
		Company:     validation.Sanitize(strings.TrimSpace(req.Company), validation.MaxCompanyLen),
		Description: validation.Sanitize(req.Description, validation.MaxDescriptionLen),
		Status:      status,
		MatchScore:  req.MatchScore,
		UserID:      userID,
	}
	if url := strings.TrimSpace(req.URL); url != "" {
		app.URL = &url
	}
	for _, name := range req.Skills {
		name = strings.TrimSpace(validation.Sanitize(name, validation.MaxSkillLen))
		if name == "" {
			continue
		}
		app.Skills = append(app.Skills, models.Skill{Name: name, Category: skillCategory})
	}

	if err := s.DB.WithContext(ctx).Create(app).Error; err != nil {
		return nil, apperr.Internal("Failed to create application", err)
	}
	return app, nil
}

// List returns the user's applications, newest first, with skills.
func (s *ApplicationService) List(ctx context.Context, userID uint) ([]models.Application, error) {
	var apps []models.Application
	err := s.DB.WithContext(ctx).
		Preload("Skills").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch applications", err)
	}
	return apps, nil
}

// UpdateStatus changes the status and records an event in the same transaction.
func (s *ApplicationService) UpdateStatus(ctx context.Context, userID uint, id string, status models.ApplicationStatus) (*models.Application, error) {
	var app models.Application
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.findOwned(tx, userID, id, &app); err != nil {
			return err
		}
		if app.Status == status {
			return nil
		}

		previous := app.Status
		if err := tx.Model(&app).Update("status", status).Error; err != nil {
			return apperr.Internal("Failed to update application", err)
		}
		app.Status = status

		event := models.ApplicationEvent{
			ApplicationID: app.ID,
			EventType:     "STATUS_CHANGE",
			Details:       fmt.Sprintf("Status changed from %s to %s", previous, status),
		}
		if err := tx.Create(&event).Error; err != nil {
			return apperr.Internal("Failed to update application", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Delete removes an application owned by userID together with its skills.
func (s *ApplicationService) Delete(ctx context.Context, userID uint, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := s.findOwned(tx, userID, id, &app); err != nil {
			return err
		}
		if err := tx.Select("Skills").Delete(&app).Error; err != nil {
			return apperr.Internal("Failed to delete application", err)
		}
		if err := tx.Where("application_id = ?", app.ID).Delete(&models.ApplicationEvent{}).Error; err != nil {
			return apperr.Internal("Failed to delete application", err)
		}
		return nil
	})
}

// Events returns the audit trail of one application, oldest first.
func (s *ApplicationService) Events(ctx context.Context, userID uint, id string) ([]models.ApplicationEvent, error) {
	var app models.Application
	if err := s.findOwned(s.DB.WithContext(ctx), userID, id, &app); err != nil {
		return nil, err
	}

	var events []models.ApplicationEvent
	if err := s.DB.WithContext(ctx).Where("application_id = ?", id).Order("id ASC").Find(&events).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch application events", err)
	}
	return events, nil
}

// Stats summarizes the dashboard figures for userID.
func (s *ApplicationService) Stats(ctx context.Context, userID uint) (dtos.ApplicationStats, error) {
	apps, err := s.List(ctx, userID)
	if err != nil {
		return dtos.ApplicationStats{}, err
	}
	return computeStats(apps), nil
}

func computeStats(apps []models.Application) dtos.ApplicationStats {
	stats := dtos.ApplicationStats{Total: len(apps)}

	var sum float64
	var scored int
	for _, a := range apps {
		if a.MatchScore != nil {
			sum += *a.MatchScore
			scored++
		}
		if a.Status == models.StatusInterviewing {
			stats.Interviewing++
		}
	}
	if scored > 0 {
		stats.AverageMatchScore = int(math.Round(sum / float64(scored)))
	}
	return stats
}

func (s *ApplicationService) findOwned(tx *gorm.DB, userID uint, id string, dst *models.Application) error {
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Application not found")
	}
	if err != nil {
		return apperr.Internal("Failed to fetch application", err)
	}
	return nil
}
