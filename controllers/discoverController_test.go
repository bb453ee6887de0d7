package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siilah/models"
	"github.com/Siilah/services"
)

func TestGetMatches(t *testing.T) {
	tests := []struct {
		name          string
		gateway       services.Gateway
		expectMatches int
		aiAvailable   bool
	}{
		{name: "returns recommendations", gateway: stubGateway{}, expectMatches: 1, aiAvailable: true},
		{name: "model failure degrades to empty", gateway: stubGateway{err: errModelDown}, expectMatches: 0, aiAvailable: false},
		{name: "no api key degrades to empty", gateway: services.DisabledGateway{}, expectMatches: 0, aiAvailable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sanctuary := SetupTestSanctuary(t, tt.gateway)
			sanctuary.SeedCorpus(MockCorpus())
			user, err := sanctuary.RegisterUser(MockOnboard("grace@example.com", "Grace"), "hash")
			require.NoError(t, err)

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, user, false)

			GetMatches(c)

			assert.Equal(t, http.StatusOK, w.Code)
			var response struct {
				Matches     []models.MatchRecommendation `json:"matches"`
				AIAvailable bool                         `json:"aiAvailable"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Len(t, response.Matches, tt.expectMatches)
			assert.NotNil(t, response.Matches)
			assert.Equal(t, tt.aiAvailable, response.AIAvailable)
		})
	}
}

func TestGetMatches_UnknownUser(t *testing.T) {
	SetupTestSanctuary(t, stubGateway{})

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, models.UserProfile{User_ID: "ghost"}, false)

	GetMatches(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchCommunity(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		gateway        services.Gateway
		expectedStatus int
		aiAvailable    bool
		expectPeople   []string
	}{
		{name: "blank query", query: "%20%20", gateway: stubGateway{}, expectedStatus: http.StatusBadRequest},
		{name: "model answers", query: "sarah", gateway: stubGateway{}, expectedStatus: http.StatusOK, aiAvailable: true, expectPeople: []string{"Sarah"}},
		{name: "model down keeps directory", query: "sarah", gateway: stubGateway{err: errModelDown}, expectedStatus: http.StatusOK, aiAvailable: false, expectPeople: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sanctuary := SetupTestSanctuary(t, tt.gateway)
			sanctuary.SeedCorpus(MockCorpus())

			c, w := SetupTestContext()
			SetJSONBody(c, http.MethodGet, "/discover/search?q="+tt.query, nil)
			SetAuthenticatedUser(c, models.UserProfile{User_ID: "user-1"}, false)

			SearchCommunity(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response struct {
				Result      models.CommunitySearchResult `json:"result"`
				Directory   models.DiscoveryCorpus       `json:"directory"`
				AIAvailable bool                         `json:"aiAvailable"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.aiAvailable, response.AIAvailable)
			assert.Equal(t, tt.expectPeople, response.Result.PeopleMatch)
			require.Len(t, response.Directory.People, 1, "substring filter matches by name")
			assert.Equal(t, "Sarah", response.Directory.People[0].Name)
		})
	}
}

func TestGetHome(t *testing.T) {
	tests := []struct {
		name        string
		gateway     services.Gateway
		aiAvailable bool
	}{
		{name: "full dashboard", gateway: stubGateway{}, aiAvailable: true},
		{name: "model down still loads", gateway: stubGateway{err: errModelDown}, aiAvailable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCircleFixture(t, tt.gateway)

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, f.user, false)

			GetHome(c)

			assert.Equal(t, http.StatusOK, w.Code)
			var response struct {
				Home        services.HomeDashboard `json:"home"`
				Circles     []models.Circle        `json:"circles"`
				AIAvailable bool                   `json:"aiAvailable"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.aiAvailable, response.AIAvailable)
			assert.Len(t, response.Circles, 1)
			assert.NotNil(t, response.Home.Progress.Connected_Circles)
			if tt.aiAvailable {
				assert.Equal(t, "You are not alone today.", response.Home.Encouragement)
			} else {
				assert.Empty(t, response.Home.Encouragement)
			}
		})
	}
}
