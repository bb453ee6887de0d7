package controllers

import (
	"context"
	"errors"

	"github.com/Siilah/models"
)

var errModelDown = errors.New("model returned 500")

// stubGateway answers every call with canned data, or err when set.
type stubGateway struct {
	err error
}

func (g stubGateway) GetMatchingRecommendations(context.Context, models.UserProfile, []models.UserProfile) ([]models.MatchRecommendation, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []models.MatchRecommendation{MockMatch()}, nil
}

func (g stubGateway) SearchCommunity(_ context.Context, query string, _ models.DiscoveryCorpus) (models.CommunitySearchResult, error) {
	if g.err != nil {
		return models.CommunitySearchResult{}, g.err
	}
	return models.CommunitySearchResult{
		PeopleMatch: []string{"Sarah"},
		ThemeMatch:  []string{"Grief"},
		Explanation: "Sarah has walked through " + query,
	}, nil
}

func (g stubGateway) GetEngagementPrompt(context.Context, string, []models.Post, []string) (models.EngagementPrompt, error) {
	if g.err != nil {
		return models.EngagementPrompt{}, g.err
	}
	return models.EngagementPrompt{Text: "Where did you see grace this week?", Type: "reflection", Action_Label: "Share"}, nil
}

func (g stubGateway) GenerateCircleSummary(_ context.Context, _ string, _ string, posts []models.Post) (models.CircleSummary, error) {
	if g.err != nil {
		return models.CircleSummary{}, g.err
	}
	return models.CircleSummary{
		Summary_Type: "weekly_circle",
		Highlights:   models.SummaryHighlights{Prayers_Shared: len(posts)},
		Key_Moment:   "Sarah shared a testimony.",
		Celebration:  "A prayer was answered!",
	}, nil
}

func (g stubGateway) GetAiPartnerResponse(context.Context, models.UserProfile, models.Post) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "I am holding this with you.", nil
}

func (g stubGateway) GetDailyEncouragement(context.Context, models.UserProfile) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "You are not alone today.", nil
}

func (g stubGateway) GetIndividualProgress(context.Context, models.UserProfile, []models.Post) (models.IndividualSummary, error) {
	if g.err != nil {
		return models.IndividualSummary{}, g.err
	}
	return models.IndividualSummary{
		Connected_Circles: []string{"Healing Triad"},
		Metrics:           models.IndividualMetrics{Shared: 1},
		Personal_Themes:   []string{"Healing"},
		Growth_Moment:     "You asked for help.",
	}, nil
}

func (g stubGateway) SummarizePost(context.Context, string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "A long prayer.", nil
}

// blankSummaryGateway answers summaries with nothing usable.
type blankSummaryGateway struct {
	stubGateway
}

func (blankSummaryGateway) GenerateCircleSummary(context.Context, string, string, []models.Post) (models.CircleSummary, error) {
	return models.CircleSummary{Themes: []models.SummaryTheme{}}, nil
}
