package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siilah/models"
	"github.com/Siilah/services"
)

func request(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("SECRET", "router-test-secret")

	sanctuary := services.NewSanctuary(services.SanctuaryConfig{AdminEmails: []string{"admin@example.com"}}, services.SanctuaryDeps{})
	previous := services.SetSanctuary(sanctuary)
	defer services.SetSanctuary(previous)
	defer sanctuary.Close()

	router := setupRouter()

	w := request(router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodGet, "/circles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(router, http.MethodPost, "/onboarding", "", models.UserProfileOnboard{
		Email:       "grace@example.com",
		Password:    "password123",
		Name:        "Grace",
		Faith_Stage: models.FaithStageGrowing,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var onboarded struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &onboarded))
	token := onboarded.Token

	w = request(router, http.MethodPost, "/circles/companion", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var companion struct {
		Circle models.Circle `json:"circle"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &companion))

	w = request(router, http.MethodPost, "/circles/"+companion.Circle.Circle_ID+"/posts", token, models.PostSubmission{
		Content_Text: "Lord, give me patience",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))

	w = request(router, http.MethodPost, "/circles/"+companion.Circle.Circle_ID+"/posts/"+post.Post_ID+"/praying", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodGet, "/circles/"+companion.Circle.Circle_ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodPost, "/admin/jobs/weekly-summaries", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "regular users cannot reach admin routes")

	w = request(router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "siilah_http_requests_total")
}
