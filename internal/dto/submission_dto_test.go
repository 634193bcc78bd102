package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acadhub/apms-go-api/internal/models"
)

func TestDeriveDisplayStatus(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	openTask := models.Task{DueDate: now.Add(24 * time.Hour), TotalMarks: 50}
	closedTask := models.Task{DueDate: now.Add(-24 * time.Hour), TotalMarks: 50}
	grade := 42.0
	zero := 0.0

	cases := []struct {
		name       string
		task       models.Task
		submission *models.Submission
		want       string
	}{
		{
			name: "no submission before deadline",
			task: openTask,
			want: "Pending",
		},
		{
			name: "no submission after deadline",
			task: closedTask,
			want: "Missing",
		},
		{
			name:       "auto missed sentinel",
			task:       closedTask,
			submission: &models.Submission{Origin: models.OriginAutoMissed, Status: models.SubmissionStatusGraded, Grade: &zero},
			want:       "Missed",
		},
		{
			name:       "graded manual submission",
			task:       closedTask,
			submission: &models.Submission{Origin: models.OriginManual, Status: models.SubmissionStatusGraded, Grade: &grade},
			want:       "Graded: 42/50",
		},
		{
			name:       "earned zero stays a grade",
			task:       closedTask,
			submission: &models.Submission{Origin: models.OriginManual, Status: models.SubmissionStatusGraded, Grade: &zero},
			want:       "Graded: 0/50",
		},
		{
			name:       "awaiting review",
			task:       openTask,
			submission: &models.Submission{Origin: models.OriginManual, Status: models.SubmissionStatusSubmitted},
			want:       "Submitted",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeriveDisplayStatus(tc.task, tc.submission, now))
		})
	}
}
