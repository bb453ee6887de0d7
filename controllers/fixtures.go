package controllers

import (
	"github.com/Siilah/models"
)

// Test fixture data for use in tests

// MockOnboard returns a complete onboarding payload. Password is "password123".
func MockOnboard(email, name string) models.UserProfileOnboard {
	return models.UserProfileOnboard{
		Email:               email,
		Password:            "password123",
		Name:                name,
		Location:            &models.UserLocation{City: "Austin"},
		Faith_Stage:         models.FaithStageGrowing,
		Seeking_Goals:       []string{"accountability"},
		Sharing_Comfort:     "small_group",
		Activity_Preference: "weekly",
		Prayer_Focus:        []string{"Healing"},
		Timezone_Preference: "evening",
	}
}

// MockCorpus is a small discovery corpus with two seeded members
func MockCorpus() models.DiscoveryCorpus {
	return models.DiscoveryCorpus{
		People: []models.UserProfile{
			{
				User_ID:        "seed-sarah",
				Name:           "Sarah",
				Email:          "sarah@example.com",
				Faith_Stage:    models.FaithStageEstablished,
				Prayer_Focus:   []string{"Grief"},
				Current_Status: models.UserStatusOnline,
			},
			{
				User_ID:        "seed-isaiah",
				Name:           "Isaiah",
				Email:          "isaiah@example.com",
				Faith_Stage:    models.FaithStageExploring,
				Prayer_Focus:   []string{"Forgiveness"},
				Current_Status: models.UserStatusAway,
			},
		},
		Circles: []models.PublicCircle{
			{ID: "c1", Name: "Morning Watch", Theme: "Healing", Activity: "daily"},
		},
		Themes: []string{"Forgiveness", "Grief", "Healing"},
	}
}

// MockMatch is a recommendation grouping the user with both seeded members
func MockMatch() models.MatchRecommendation {
	return models.MatchRecommendation{
		CandidateNames: []string{"Sarah", "Isaiah"},
		GroupType:      "Healing",
		OverallScore:   0.91,
		Pillars: models.MatchPillars{
			SpiritualSync:        0.9,
			RhythmMatch:          0.8,
			VulnerabilityBalance: 0.95,
		},
		Reasoning:    "All three are walking through a season of healing.",
		CommonGround: []string{"Healing"},
	}
}
