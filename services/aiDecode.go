package services

import (
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/Siilah/models"
)

var (
	stringArraySchema = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

	matchSchema = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"candidateNames": stringArraySchema,
				"groupType":      {Type: genai.TypeString},
				"overallScore":   {Type: genai.TypeNumber},
				"pillars": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"spiritualSync":        {Type: genai.TypeNumber},
						"rhythmMatch":          {Type: genai.TypeNumber},
						"vulnerabilityBalance": {Type: genai.TypeNumber},
					},
				},
				"reasoning":    {Type: genai.TypeString},
				"commonGround": stringArraySchema,
			},
			Required: []string{"candidateNames", "groupType", "overallScore", "pillars", "reasoning", "commonGround"},
		},
	}

	searchSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"peopleMatch": stringArraySchema,
			"themeMatch":  stringArraySchema,
			"explanation": {Type: genai.TypeString},
		},
	}

	promptSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"text":        {Type: genai.TypeString},
			"type":        {Type: genai.TypeString},
			"actionLabel": {Type: genai.TypeString},
			"context":     {Type: genai.TypeString},
		},
		Required: []string{"text", "type", "actionLabel", "context"},
	}

	summarySchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"themes": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"theme":     {Type: genai.TypeString},
						"count":     {Type: genai.TypeNumber},
						"sentiment": {Type: genai.TypeString},
					},
				},
			},
			"keyMoment":   {Type: genai.TypeString},
			"celebration": {Type: genai.TypeString},
			"nextPrompt":  {Type: genai.TypeString},
		},
		Required: []string{"themes", "keyMoment", "celebration", "nextPrompt"},
	}

	progressSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"connectedCircles": stringArraySchema,
			"metrics": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"shared":     {Type: genai.TypeNumber},
					"encouraged": {Type: genai.TypeNumber},
					"prayed":     {Type: genai.TypeNumber},
					"streak":     {Type: genai.TypeNumber},
				},
			},
			"personalThemes": stringArraySchema,
			"growthMoment":   {Type: genai.TypeString},
		},
	}
)

// cleanJSON strips the markdown fences models sometimes wrap JSON in.
func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}

// parseJSON returns the parsed document, or an empty result when raw is not valid JSON.
func parseJSON(raw string) gjson.Result {
	raw = cleanJSON(raw)
	if !gjson.Valid(raw) {
		return gjson.Result{}
	}
	return gjson.Parse(raw)
}

func stringList(value gjson.Result) []string {
	list := []string{}
	if !value.IsArray() {
		return list
	}
	for _, item := range value.Array() {
		if item.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(item.String()); s != "" {
			list = append(list, s)
		}
	}
	return list
}

func decodeMatches(raw string) []models.MatchRecommendation {
	matches := []models.MatchRecommendation{}
	doc := parseJSON(raw)
	if !doc.IsArray() {
		return matches
	}

	doc.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		names := stringList(item.Get("candidateNames"))
		if len(names) == 0 {
			return true
		}
		matches = append(matches, models.MatchRecommendation{
			CandidateNames: names,
			GroupType:      item.Get("groupType").String(),
			OverallScore:   item.Get("overallScore").Float(),
			Pillars: models.MatchPillars{
				SpiritualSync:        item.Get("pillars.spiritualSync").Float(),
				RhythmMatch:          item.Get("pillars.rhythmMatch").Float(),
				VulnerabilityBalance: item.Get("pillars.vulnerabilityBalance").Float(),
			},
			Reasoning:    item.Get("reasoning").String(),
			CommonGround: stringList(item.Get("commonGround")),
		})
		return true
	})
	return matches
}

func decodeSearch(raw string) models.CommunitySearchResult {
	doc := parseJSON(raw)
	if !doc.IsObject() {
		return models.CommunitySearchResult{PeopleMatch: []string{}, ThemeMatch: []string{}}
	}
	return models.CommunitySearchResult{
		PeopleMatch: stringList(doc.Get("peopleMatch")),
		ThemeMatch:  stringList(doc.Get("themeMatch")),
		Explanation: doc.Get("explanation").String(),
	}
}

func decodePrompt(raw string) models.EngagementPrompt {
	doc := parseJSON(raw)
	if !doc.IsObject() {
		return models.EngagementPrompt{}
	}
	return models.EngagementPrompt{
		Text:         doc.Get("text").String(),
		Type:         doc.Get("type").String(),
		Action_Label: doc.Get("actionLabel").String(),
		Context:      doc.Get("context").String(),
	}
}

func decodeCircleSummary(raw string) models.CircleSummary {
	summary := models.CircleSummary{Themes: []models.SummaryTheme{}}
	doc := parseJSON(raw)
	if !doc.IsObject() {
		return summary
	}

	for _, item := range doc.Get("themes").Array() {
		if !item.IsObject() || item.Get("theme").String() == "" {
			continue
		}
		summary.Themes = append(summary.Themes, models.SummaryTheme{
			Theme:     item.Get("theme").String(),
			Count:     int(item.Get("count").Int()),
			Sentiment: item.Get("sentiment").String(),
		})
	}
	if len(summary.Themes) > 5 {
		summary.Themes = summary.Themes[:5]
	}
	summary.Key_Moment = doc.Get("keyMoment").String()
	summary.Celebration = doc.Get("celebration").String()
	summary.Next_Prompt = doc.Get("nextPrompt").String()
	return summary
}

func decodeProgress(raw string) models.IndividualSummary {
	progress := models.IndividualSummary{Connected_Circles: []string{}, Personal_Themes: []string{}}
	doc := parseJSON(raw)
	if !doc.IsObject() {
		return progress
	}

	progress.Connected_Circles = stringList(doc.Get("connectedCircles"))
	progress.Personal_Themes = stringList(doc.Get("personalThemes"))
	progress.Growth_Moment = doc.Get("growthMoment").String()
	progress.Metrics = models.IndividualMetrics{
		Shared:     int(doc.Get("metrics.shared").Int()),
		Encouraged: int(doc.Get("metrics.encouraged").Int()),
		Prayed:     int(doc.Get("metrics.prayed").Int()),
		Streak:     int(doc.Get("metrics.streak").Int()),
	}
	return progress
}
