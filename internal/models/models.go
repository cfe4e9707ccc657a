package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a GitHub account that has signed in at least once.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	GitHubID  int64  `gorm:"uniqueIndex;not null" json:"githubId"`
	Login     string `gorm:"not null" json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

type ApplicationStatus string

const (
	StatusSaved        ApplicationStatus = "SAVED"
	StatusApplied      ApplicationStatus = "APPLIED"
	StatusInterviewing ApplicationStatus = "INTERVIEWING"
	StatusOffered      ApplicationStatus = "OFFERED"
	StatusRejected     ApplicationStatus = "REJECTED"
	StatusWithdrawn    ApplicationStatus = "WITHDRAWN"
)

type Application struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title       string            `gorm:"not null" json:"title"`
	Company     string            `gorm:"not null" json:"company"`
	URL         *string           `json:"url"`
	Description string            `gorm:"type:text" json:"description"`
	Status      ApplicationStatus `gorm:"size:16;default:'SAVED'" json:"status"`
	MatchScore  *float64          `json:"matchScore"`

	UserID uint `gorm:"index;not null" json:"userId"`
	// Skills cascade with the application.
	Skills []Skill `gorm:"constraint:OnDelete:CASCADE" json:"skills"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type Skill struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ApplicationID string `gorm:"index;size:36" json:"applicationId"`
	Name          string `gorm:"not null" json:"name"`
	Category      string `json:"category"`
}

// ApplicationEvent is an audit record of a change to an application.
type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	ApplicationID string    `gorm:"index;size:36" json:"applicationId"`
	EventType     string    `json:"eventType"`
	Details       string    `gorm:"type:text" json:"details"`
}
