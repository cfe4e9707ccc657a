package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/justsurfingit/hireme-ai/internal/apperr"
	"github.com/justsurfingit/hireme-ai/internal/models"
)

const ExportFilename = "hireme-ai-applications.csv"

var exportHeader = []string{"Job Title", "Company", "Status", "Match Score (%)", "Date Applied"}

// ExportCSV writes the user's applications as CSV, newest first.
func (s *ApplicationService) ExportCSV(ctx context.Context, userID uint, w io.Writer) error {
	apps, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	if err := writeApplicationsCSV(w, apps); err != nil {
		return apperr.Internal("Failed to export applications", err)
	}
	return nil
}

func writeApplicationsCSV(w io.Writer, apps []models.Application) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, a := range apps {
		score := "N/A"
		if a.MatchScore != nil {
			score = strconv.FormatFloat(*a.MatchScore, 'f', -1, 64)
		}
		row := []string{
			csvCell(a.Title),
			csvCell(a.Company),
			csvCell(string(a.Status)),
			score,
			a.CreatedAt.Format("2006-01-02"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// csvCell defuses spreadsheet formulas by prefixing a quote.
func csvCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}
