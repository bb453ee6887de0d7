package models

import "time"

type EngagementPrompt struct {
	Text         string `json:"text"`
	Type         string `json:"type"`
	Action_Label string `json:"actionLabel"`
	Context      string `json:"context"`
}

type SummaryHighlights struct {
	Prayers_Shared int `json:"prayersShared"`
	Responses      int `json:"responses"`
	Praying_Now    int `json:"prayingNow"`
}

type SummaryTheme struct {
	Theme     string `json:"theme"`
	Count     int    `json:"count"`
	Sentiment string `json:"sentiment"`
}

type CircleSummary struct {
	Summary_ID   string            `json:"summaryId"`
	Summary_Type string            `json:"summaryType"`
	Period_Start time.Time         `json:"periodStart"`
	Period_End   time.Time         `json:"periodEnd"`
	Highlights   SummaryHighlights `json:"highlights"`
	Themes       []SummaryTheme    `json:"themes"`
	Key_Moment   string            `json:"keyMoment"`
	Next_Prompt  string            `json:"nextPrompt"`
	Celebration  string            `json:"celebration"`
	Generated_At time.Time         `json:"generatedAt"`
}

// IsEmpty reports whether the model produced none of the narrative fields.
func (s CircleSummary) IsEmpty() bool {
	return s.Celebration == "" && s.Key_Moment == "" && s.Next_Prompt == "" && len(s.Themes) == 0
}

type IndividualMetrics struct {
	Shared     int `json:"shared"`
	Encouraged int `json:"encouraged"`
	Prayed     int `json:"prayed"`
	Streak     int `json:"streak"`
}

type IndividualSummary struct {
	Connected_Circles []string          `json:"connectedCircles"`
	Metrics           IndividualMetrics `json:"metrics"`
	Personal_Themes   []string          `json:"personalThemes"`
	Growth_Moment     string            `json:"growthMoment"`
}
