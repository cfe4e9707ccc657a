package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/justsurfingit/hireme-ai/internal/dtos"
	"github.com/justsurfingit/hireme-ai/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteApplicationsCSV(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	apps := []models.Application{
		{Title: "Go Developer", Company: "Acme, Inc.", Status: models.StatusApplied, MatchScore: scorePtr(87.5), CreatedAt: created},
		{Title: "=HYPERLINK(\"x\")", Company: "@corp", Status: models.StatusSaved, CreatedAt: created},
		{Title: "-1", Company: "+44", Status: models.StatusRejected, MatchScore: scorePtr(0), CreatedAt: created},
	}

	var buf bytes.Buffer
	require.NoError(t, writeApplicationsCSV(&buf, apps))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Job Title", "Company", "Status", "Match Score (%)", "Date Applied"}, rows[0])
	assert.Equal(t, []string{"Go Developer", "Acme, Inc.", "APPLIED", "87.5", "2025-03-14"}, rows[1])
	assert.Equal(t, []string{"'=HYPERLINK(\"x\")", "'@corp", "SAVED", "N/A", "2025-03-14"}, rows[2])
	assert.Equal(t, []string{"'-1", "'+44", "REJECTED", "0", "2025-03-14"}, rows[3])
}

func TestCSVCell(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"plain":   "plain",
		"=1+1":    "'=1+1",
		"\tlead":  "'\tlead",
		"\rlead":  "'\rlead",
		"mid=dle": "mid=dle",
		"Ünïcode": "Ünïcode",
	}
	for in, want := range tests {
		assert.Equal(t, want, csvCell(in), "input %q", in)
	}
}

func TestApplicationService_ExportCSV(t *testing.T) {
	s := newApplicationService(t)
	createApp(t, s, 1, dtos.ApplicationCreateRequest{Title: "Mine", Company: "C", Description: "d"})
	createApp(t, s, 2, dtos.ApplicationCreateRequest{Title: "Theirs", Company: "C", Description: "d"})

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(context.Background(), 1, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Mine", rows[1][0])
	assert.Equal(t, "N/A", rows[1][3])
}
