package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/justsurfingit/hireme-ai/internal/apperr"
	"github.com/justsurfingit/hireme-ai/internal/database/databasetest"
	"github.com/justsurfingit/hireme-ai/internal/dtos"
	"github.com/justsurfingit/hireme-ai/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scorePtr(v float64) *float64 { return &v }

func newApplicationService(t *testing.T) *ApplicationService {
	t.Helper()
	return NewApplicationService(databasetest.Open(t))
}

func createApp(t *testing.T, s *ApplicationService, userID uint, req dtos.ApplicationCreateRequest) *models.Application {
	t.Helper()
	app, err := s.Create(context.Background(), userID, &req)
	require.NoError(t, err)
	return app
}

func TestApplicationService_Create(t *testing.T) {
	s := newApplicationService(t)

	app := createApp(t, s, 1, dtos.ApplicationCreateRequest{
		Title:       "  Backend Engineer ",
		Company:     "Acme\x00 Corp",
		URL:         "https://jobs.example.com/1",
		Description: strings.Repeat("d", 60000),
		MatchScore:  scorePtr(72),
		Skills:      []string{"Go", "  ", "Postgres"},
	})

	assert.Len(t, app.ID, 36)
	assert.Equal(t, "Backend Engineer", app.Title)
	assert.Equal(t, "Acme Corp", app.Company)
	assert.Equal(t, models.StatusSaved, app.Status)
	require.NotNil(t, app.URL)
	assert.Equal(t, "https://jobs.example.com/1", *app.URL)
	assert.Len(t, []rune(app.Description), 50000)
	require.Len(t, app.Skills, 2)
	assert.Equal(t, "Go", app.Skills[0].Name)
	assert.Equal(t, "technical", app.Skills[0].Category)
}

func TestApplicationService_CreateWithoutURL(t *testing.T) {
	s := newApplicationService(t)

	app := createApp(t, s, 1, dtos.ApplicationCreateRequest{
		Title: "SRE", Company: "Initech", Description: "on call", Status: "APPLIED",
	})

	assert.Nil(t, app.URL)
	assert.Nil(t, app.MatchScore)
	assert.Equal(t, models.StatusApplied, app.Status)
}

func TestApplicationService_ListIsScopedAndOrdered(t *testing.T) {
	s := newApplicationService(t)
	ctx := context.Background()

	older := createApp(t, s, 1, dtos.ApplicationCreateRequest{Title: "Old", Company: "A", Description: "x", Skills: []string{"Go"}})
	newer := createApp(t, s, 1, dtos.ApplicationCreateRequest{Title: "New", Company: "B", Description: "y"})
	createApp(t, s, 2, dtos.ApplicationCreateRequest{Title: "Other", Company: "C", Description: "z"})

	require.NoError(t, s.DB.Model(&models.Application{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	apps, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, newer.ID, apps[0].ID)
	assert.Equal(t, older.ID, apps[1].ID)
	require.Len(t, apps[1].Skills, 1)
	assert.Equal(t, "Go", apps[1].Skills[0].Name)
}

func TestApplicationService_UpdateStatusRecordsEvent(t *testing.T) {
	s := newApplicationService(t)
	ctx := context.Background()
	app := createApp(t, s, 1, dtos.ApplicationCreateRequest{Title: "T", Company: "C", Description: "d"})

	updated, err := s.UpdateStatus(ctx, 1, app.ID, models.StatusInterviewing)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterviewing, updated.Status)

	// unchanged status leaves no second event
	_, err = s.UpdateStatus(ctx, 1, app.ID, models.StatusInterviewing)
	require.NoError(t, err)

	events, err := s.Events(ctx, 1, app.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "STATUS_CHANGE", events[0].EventType)
	assert.Equal(t, "Status changed from SAVED to INTERVIEWING", events[0].Details)
}

func TestApplicationService_OtherUsersApplicationIsNotFound(t *testing.T) {
	s := newApplicationService(t)
	ctx := context.Background()
	app := createApp(t, s, 1, dtos.ApplicationCreateRequest{Title: "T", Company: "C", Description: "d"})

	_, err := s.UpdateStatus(ctx, 2, app.ID, models.StatusApplied)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = s.Delete(ctx, 2, app.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = s.Events(ctx, 2, app.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = s.Delete(ctx, 1, "no-such-id")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestApplicationService_DeleteRemovesChildren(t *testing.T) {
	s := newApplicationService(t)
	ctx := context.Background()
	app := createApp(t, s, 1, dtos.ApplicationCreateRequest{
		Title: "T", Company: "C", Description: "d", Skills: []string{"Go", "SQL"},
	})
	_, err := s.UpdateStatus(ctx, 1, app.ID, models.StatusApplied)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, 1, app.ID))

	var skills, events, apps int64
	s.DB.Model(&models.Skill{}).Where("application_id = ?", app.ID).Count(&skills)
	s.DB.Model(&models.ApplicationEvent{}).Where("application_id = ?", app.ID).Count(&events)
	s.DB.Model(&models.Application{}).Where("id = ?", app.ID).Count(&apps)
	assert.Zero(t, skills)
	assert.Zero(t, events)
	assert.Zero(t, apps)
}

func TestApplicationService_Stats(t *testing.T) {
	s := newApplicationService(t)
	ctx := context.Background()

	createApp(t, s, 1, dtos.ApplicationCreateRequest{Title: "A", Company: "C", Description: "d", MatchScore: scorePtr(80)})
	createApp(t, s, 1, dtos.ApplicationCreateRequest{Title: "B", Company: "C", Description: "d", MatchScore: scorePtr(65), Status: "INTERVIEWING"})
	createApp(t, s, 1, dtos.ApplicationCreateRequest{Title: "C", Company: "C", Description: "d"})

	stats, err := s.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, dtos.ApplicationStats{Total: 3, AverageMatchScore: 73, Interviewing: 1}, stats)

	empty, err := s.Stats(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, dtos.ApplicationStats{}, empty)
}
