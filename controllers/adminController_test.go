package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siilah/models"
	"github.com/Siilah/services"
)

func TestPing(t *testing.T) {
	c, w := SetupTestContext()

	Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestRunWeeklySummaries(t *testing.T) {
	f := newCircleFixture(t, stubGateway{})
	_, err := f.sanctuary.SubmitPost(f.sarah.User_ID, f.circle.Circle_ID, models.PostSubmission{Content_Text: "Thank you all"})
	require.NoError(t, err)

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, models.UserProfile{User_ID: "admin"}, true)

	RunWeeklySummaries(c)
	f.sanctuary.Wait()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"generated":1`)

	posts, err := f.sanctuary.ListPosts(f.user.User_ID, f.circle.Circle_ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostTypeSummary, posts[0].Post_Type)
}

func TestGetCircleActivity(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(mock sqlmock.Sqlmock)
		expectedStatus int
		expected       map[string]int
	}{
		{
			name: "counts by action",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"action_type", "total"}).
					AddRow(models.ActivityPostCreated, 4).
					AddRow(models.ActivityPrayingStarted, 2)
				mock.ExpectQuery(`SELECT .* FROM "circle_activity"`).WillReturnRows(rows)
			},
			expectedStatus: http.StatusOK,
			expected: map[string]int{
				models.ActivityPostCreated:    4,
				models.ActivityPrayingStarted: 2,
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM "circle_activity"`).WillReturnError(errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()
			tt.setupMock(mock)

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, models.UserProfile{User_ID: "admin"}, true)
			SetParams(c, "circle_id", "circle-1")

			GetCircleActivity(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
			if tt.expected == nil {
				return
			}

			var response struct {
				CircleID string         `json:"circleId"`
				Activity map[string]int `json:"activity"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "circle-1", response.CircleID)
			assert.Equal(t, tt.expected, response.Activity)
		})
	}
}

func TestGetCircleActivity_JournalDisabled(t *testing.T) {
	previous := services.SetActivityJournal(nil)
	defer services.SetActivityJournal(previous)

	c, w := SetupTestContext()
	SetParams(c, "circle_id", "circle-1")

	GetCircleActivity(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
