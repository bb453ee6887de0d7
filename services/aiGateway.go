package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

// PartnerFallbackReply is used when the model answers with empty text.
const PartnerFallbackReply = "I am holding this in my heart with you."

// Gateway is the boundary to the generative model. Implementations return an
// error only when the call itself fails; malformed model output decodes to
// empty values.
type Gateway interface {
	GetMatchingRecommendations(ctx context.Context, profile models.UserProfile, candidates []models.UserProfile) ([]models.MatchRecommendation, error)
	SearchCommunity(ctx context.Context, query string, corpus models.DiscoveryCorpus) (models.CommunitySearchResult, error)
	GetEngagementPrompt(ctx context.Context, circleName string, recentPosts []models.Post, memberNames []string) (models.EngagementPrompt, error)
	GenerateCircleSummary(ctx context.Context, circleID, circleName string, posts []models.Post) (models.CircleSummary, error)
	GetAiPartnerResponse(ctx context.Context, profile models.UserProfile, post models.Post) (string, error)
	GetDailyEncouragement(ctx context.Context, profile models.UserProfile) (string, error)
	GetIndividualProgress(ctx context.Context, profile models.UserProfile, posts []models.Post) (models.IndividualSummary, error)
	SummarizePost(ctx context.Context, content string) (string, error)
}

// contentGenerator is the slice of the genai client the gateway uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiGateway struct {
	generator  contentGenerator
	proModel   string
	flashModel string
	now        func() time.Time
}

var _ Gateway = (*GeminiGateway)(nil)

func NewGeminiGateway(ctx context.Context, apiKey, proModel, flashModel string) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return newGeminiGateway(client.Models, proModel, flashModel), nil
}

func newGeminiGateway(generator contentGenerator, proModel, flashModel string) *GeminiGateway {
	return &GeminiGateway{
		generator:  generator,
		proModel:   proModel,
		flashModel: flashModel,
		now:        time.Now,
	}
}

func (g *GeminiGateway) generate(ctx context.Context, operation, model, prompt string, schema *genai.Schema) (string, error) {
	var config *genai.GenerateContentConfig
	if schema != nil {
		config = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	start := time.Now()
	result, err := g.generator.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		observeGatewayCall(operation, "error", time.Since(start))
		initializers.Log.Warnw("gateway call failed", "operation", operation, "model", model, "error", err)
		return "", fmt.Errorf("%s: %w", operation, err)
	}
	observeGatewayCall(operation, "ok", time.Since(start))

	text := responseText(result)
	initializers.Log.Debugw("gateway call complete", "operation", operation, "model", model, "chars", len(text))
	return text, nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func (g *GeminiGateway) GetMatchingRecommendations(ctx context.Context, profile models.UserProfile, candidates []models.UserProfile) ([]models.MatchRecommendation, error) {
	var lines []string
	for _, c := range candidates {
		lines = append(lines, fmt.Sprintf("- %s: Faith(%s), Stages(%s), Focus(%s), Rhythm(%s), Comfort(%s), Time(%s)",
			c.Name, c.Faith_Stage, strings.Join(c.Life_Stages, ","), strings.Join(c.Prayer_Focus, ","),
			c.Activity_Preference, c.Sharing_Comfort, c.Timezone_Preference))
	}

	prompt := fmt.Sprintf(`You are Siilah's Spiritual Community Architect.
Target User: %s (Faith: %s, Rhythm: %s, Comfort: %s, Time: %s)

Candidates:
%s

Task: Create 2 triad recommendations based on these compatibility weights:
- Activity Rhythm (30%%): CRITICAL match. Daily vs Weekly.
- Life Stages (20%%): Shared parenting, career, etc.
- Prayer Focus (20%%): Shared focus areas.
- Faith Stage (15%%): Compatibility between stages (e.g., Growing + Established).
- Sharing Comfort (10%%): Match small-group vs 1:1.
- Timezone/Availability (5%%): Morning vs Evening.

Respond with structured JSON recommendations.`,
		profile.Name, profile.Faith_Stage, profile.Activity_Preference, profile.Sharing_Comfort, profile.Timezone_Preference,
		strings.Join(lines, "\n"))

	text, err := g.generate(ctx, "matching", g.proModel, prompt, matchSchema)
	if err != nil {
		return nil, err
	}
	return decodeMatches(text), nil
}

func (g *GeminiGateway) SearchCommunity(ctx context.Context, query string, corpus models.DiscoveryCorpus) (models.CommunitySearchResult, error) {
	names := make([]string, 0, len(corpus.People))
	for _, p := range corpus.People {
		names = append(names, p.Name)
	}
	circles := make([]string, 0, len(corpus.Circles))
	for _, c := range corpus.Circles {
		circles = append(circles, fmt.Sprintf("%s (%s)", c.Name, c.Theme))
	}

	prompt := fmt.Sprintf(`You are Siilah's Community Guide. A user is searching for: %q

Based on the query, identify relevant:
1. People (from provided list: %s)
2. Themes (from list: %s)
3. Potential Circle types (from list: %s)

Explain WHY these matches are spiritually relevant to the query.
Respond in JSON.`, query, strings.Join(names, ", "), strings.Join(corpus.Themes, ", "), strings.Join(circles, ", "))

	text, err := g.generate(ctx, "search", g.flashModel, prompt, searchSchema)
	if err != nil {
		return models.CommunitySearchResult{}, err
	}
	return decodeSearch(text), nil
}

func (g *GeminiGateway) GetEngagementPrompt(ctx context.Context, circleName string, recentPosts []models.Post, memberNames []string) (models.EngagementPrompt, error) {
	activity := "New circle."
	if len(recentPosts) > 0 {
		recent := recentPosts
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		texts := make([]string, 0, len(recent))
		for _, p := range recent {
			texts = append(texts, p.Content_Text)
		}
		activity = "Recent activity: " + strings.Join(texts, " | ")
	}

	prompt := fmt.Sprintf(`Generate a fresh, 10-15 word question for %q (members: %s). Context: %s. Avoid repeat themes. Focus on reflection.`,
		circleName, strings.Join(memberNames, ", "), activity)

	text, err := g.generate(ctx, "engagement_prompt", g.flashModel, prompt, promptSchema)
	if err != nil {
		return models.EngagementPrompt{}, err
	}
	return decodePrompt(text), nil
}

func (g *GeminiGateway) GenerateCircleSummary(ctx context.Context, circleID, circleName string, posts []models.Post) (models.CircleSummary, error) {
	lines := make([]string, 0, len(posts))
	for _, p := range posts {
		lines = append(lines, fmt.Sprintf("User %s: %s", p.User.Name, p.Content_Text))
	}

	prompt := fmt.Sprintf(`Analyze this week's activity in the circle %q.
Posts:
%s

Task:
1. Extract up to 5 main themes (family, faith growth, etc.) with count and sentiment.
2. Identify ONE specific "Key Moment" that shows deep connection.
3. Generate a celebration message (e.g., "4 weeks of consistency!").
4. Suggest a fresh open-ended prompt for next week (10-15 words).`, circleName, strings.Join(lines, "\n"))

	text, err := g.generate(ctx, "circle_summary", g.proModel, prompt, summarySchema)
	if err != nil {
		return models.CircleSummary{}, err
	}

	now := g.now()
	summary := decodeCircleSummary(text)
	summary.Summary_ID = uuid.NewString()
	summary.Summary_Type = "weekly_circle"
	summary.Period_Start = now.Add(-7 * 24 * time.Hour)
	summary.Period_End = now
	summary.Highlights = summaryHighlights(posts)
	summary.Generated_At = now
	return summary, nil
}

// summaryHighlights is computed from the posts themselves, never from the model.
func summaryHighlights(posts []models.Post) models.SummaryHighlights {
	var h models.SummaryHighlights
	h.Prayers_Shared = len(posts)
	for _, p := range posts {
		h.Responses += p.Response_Count
		if len(p.Praying_Now) > 0 {
			h.Praying_Now++
		}
	}
	return h
}

func (g *GeminiGateway) GetAiPartnerResponse(ctx context.Context, profile models.UserProfile, post models.Post) (string, error) {
	prompt := fmt.Sprintf(`You are Siilah, an AI spiritual guide and prayer partner for a Christian community.
User Profile: %s, currently in the %q stage of faith.
Focus areas: %s.

The user just shared a %s: %q.

Task: Respond as a loving, wise, and encouraging spiritual companion.
- If it's a prayer request: Offer a short, specific prayer for them.
- If it's a testimony: Celebrate with them and acknowledge God's faithfulness.
- If it's a struggle: Offer empathy, a relevant spiritual truth, and comfort.
- If it's gratitude: Join in their thanksgiving.

Tone: Warm, humble, text-first, Christian-leaning, but never preachy. Keep it under 60 words.`,
		profile.Name, profile.Faith_Stage, strings.Join(profile.Prayer_Focus, ", "), post.Post_Type, post.Content_Text)

	text, err := g.generate(ctx, "partner_response", g.flashModel, prompt, nil)
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return PartnerFallbackReply, nil
	}
	return text, nil
}

func (g *GeminiGateway) GetDailyEncouragement(ctx context.Context, profile models.UserProfile) (string, error) {
	prompt := fmt.Sprintf(`Write a warm morning encouragement (<20 words) for %s. Faith: %s. Focus: %s.`,
		profile.Name, profile.Faith_Stage, strings.Join(profile.Prayer_Focus, ","))

	text, err := g.generate(ctx, "daily_encouragement", g.flashModel, prompt, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *GeminiGateway) GetIndividualProgress(ctx context.Context, profile models.UserProfile, posts []models.Post) (models.IndividualSummary, error) {
	var shares []string
	for _, p := range posts {
		if p.User.User_ID == profile.User_ID {
			shares = append(shares, p.Content_Text)
		}
	}

	prompt := fmt.Sprintf(`Analyze spiritual growth for %s. Shares: %s.`, profile.Name, strings.Join(shares, " | "))

	text, err := g.generate(ctx, "individual_progress", g.proModel, prompt, progressSchema)
	if err != nil {
		return models.IndividualSummary{}, err
	}
	return decodeProgress(text), nil
}

func (g *GeminiGateway) SummarizePost(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf(`Provide a very brief (max 15 words) summary of the following prayer request/spiritual reflection to help community members grasp the core need quickly: %q`, content)

	text, err := g.generate(ctx, "post_summary", g.flashModel, prompt, nil)
	if err != nil {
		return "", err
	}
	return limitWords(strings.TrimSpace(text), 15), nil
}

func limitWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ")
}

// DisabledGateway is used when no API key is configured.
type DisabledGateway struct{}

var _ Gateway = DisabledGateway{}

func (DisabledGateway) GetMatchingRecommendations(context.Context, models.UserProfile, []models.UserProfile) ([]models.MatchRecommendation, error) {
	return nil, ErrGatewayUnavailable
}

func (DisabledGateway) SearchCommunity(context.Context, string, models.DiscoveryCorpus) (models.CommunitySearchResult, error) {
	return models.CommunitySearchResult{}, ErrGatewayUnavailable
}

func (DisabledGateway) GetEngagementPrompt(context.Context, string, []models.Post, []string) (models.EngagementPrompt, error) {
	return models.EngagementPrompt{}, ErrGatewayUnavailable
}

func (DisabledGateway) GenerateCircleSummary(context.Context, string, string, []models.Post) (models.CircleSummary, error) {
	return models.CircleSummary{}, ErrGatewayUnavailable
}

func (DisabledGateway) GetAiPartnerResponse(context.Context, models.UserProfile, models.Post) (string, error) {
	return "", ErrGatewayUnavailable
}

func (DisabledGateway) GetDailyEncouragement(context.Context, models.UserProfile) (string, error) {
	return "", ErrGatewayUnavailable
}

func (DisabledGateway) GetIndividualProgress(context.Context, models.UserProfile, []models.Post) (models.IndividualSummary, error) {
	return models.IndividualSummary{}, ErrGatewayUnavailable
}

func (DisabledGateway) SummarizePost(context.Context, string) (string, error) {
	return "", ErrGatewayUnavailable
}
