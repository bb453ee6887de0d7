package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Siilah/models"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeGateway struct {
	mu sync.Mutex

	matches       []models.MatchRecommendation
	search        models.CommunitySearchResult
	prompt        models.EngagementPrompt
	circleSummary models.CircleSummary
	partnerReply  string
	encouragement string
	progress      models.IndividualSummary
	postSummary   string
	err           error

	partnerCalls   int
	summarizeCalls int
	summaryCalls   int
	lastPosts      []models.Post
}

func (f *fakeGateway) GetMatchingRecommendations(context.Context, models.UserProfile, []models.UserProfile) ([]models.MatchRecommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matches, f.err
}

func (f *fakeGateway) SearchCommunity(context.Context, string, models.DiscoveryCorpus) (models.CommunitySearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.search, f.err
}

func (f *fakeGateway) GetEngagementPrompt(_ context.Context, _ string, posts []models.Post, _ []string) (models.EngagementPrompt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPosts = posts
	return f.prompt, f.err
}

func (f *fakeGateway) GenerateCircleSummary(_ context.Context, _, _ string, posts []models.Post) (models.CircleSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	f.lastPosts = posts
	summary := f.circleSummary
	summary.Highlights = summaryHighlights(posts)
	return summary, f.err
}

func (f *fakeGateway) GetAiPartnerResponse(context.Context, models.UserProfile, models.Post) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partnerCalls++
	return f.partnerReply, f.err
}

func (f *fakeGateway) GetDailyEncouragement(context.Context, models.UserProfile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.encouragement, f.err
}

func (f *fakeGateway) GetIndividualProgress(context.Context, models.UserProfile, []models.Post) (models.IndividualSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress, f.err
}

func (f *fakeGateway) SummarizePost(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summarizeCalls++
	return f.postSummary, f.err
}

func (f *fakeGateway) PartnerCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.partnerCalls
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingBroadcaster) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// LastFor returns the most recent event carrying the given post.
func (r *recordingBroadcaster) LastFor(postID string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Post != nil && r.events[i].Post.Post_ID == postID {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func (r *recordingBroadcaster) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

type fakeNotifier struct {
	mu       sync.Mutex
	praying  []string
	response []string
	answered [][]models.UserProfile
	summary  int
}

func (f *fakeNotifier) NotifyAuthorOfPraying(author models.UserProfile, actorName string, _ models.Circle, _ models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.praying = append(f.praying, author.User_ID+"<-"+actorName)
}

func (f *fakeNotifier) NotifyAuthorOfResponse(author models.UserProfile, actorName string, _ models.Circle, _ models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.response = append(f.response, author.User_ID+"<-"+actorName)
}

func (f *fakeNotifier) NotifyCircleOfAnsweredPrayer(recipients []models.UserProfile, _ string, _ models.Circle, _ models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, recipients)
}

func (f *fakeNotifier) NotifyCircleOfSummary([]models.UserProfile, models.Circle, models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary++
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) SendCircleDigestEmail(toEmail, _, _ string, _ models.CircleSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, toEmail)
	return nil
}

var testCorpus = models.DiscoveryCorpus{
	People: []models.UserProfile{
		{User_ID: "seed-sarah", Name: "Sarah", Email: "sarah@example.com", Faith_Stage: models.FaithStageEstablished, Current_Status: models.UserStatusOnline,
			Notification_Settings: models.NotificationSettings{Push_Enabled: true, Prayer_Requests: true, Circle_Activity: true, Messages: true}},
		{User_ID: "seed-isaiah", Name: "Isaiah", Email: "isaiah@example.com", Faith_Stage: models.FaithStageGrowing, Current_Status: models.UserStatusAway},
	},
	Circles: []models.PublicCircle{
		{ID: "c1", Name: "Waiting Season Triad", Theme: "Waiting", Activity: "Daily"},
		{ID: "c4", Name: "Healing Hearts", Theme: "Grief", Activity: "Biweekly"},
	},
	Themes: []string{"Forgiveness", "Grief", "Healing"},
}

type testEnv struct {
	s           *Sanctuary
	gateway     *fakeGateway
	broadcaster *recordingBroadcaster
	notifier    *fakeNotifier
	mailer      *fakeMailer
	clock       *testClock
	grace       models.UserProfile
	circle      models.Circle
}

// newTestEnv builds a sanctuary with one onboarded user, Grace, in a triad
// with the seeded Sarah and Isaiah.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		gateway:     &fakeGateway{partnerReply: "Praying with you."},
		broadcaster: &recordingBroadcaster{},
		notifier:    &fakeNotifier{},
		mailer:      &fakeMailer{},
		clock:       newTestClock(),
	}
	cfg := DefaultSanctuaryConfig()
	cfg.CompanionChatDelay = 0
	cfg.CompanionReflectionDelay = 0
	env.s = NewSanctuary(cfg, SanctuaryDeps{
		Gateway:     env.gateway,
		Notifier:    env.notifier,
		Broadcaster: env.broadcaster,
		Mailer:      env.mailer,
		Clock:       env.clock.Now,
	})
	t.Cleanup(env.s.Close)

	env.s.SeedCorpus(testCorpus)

	grace, err := env.s.RegisterUser(models.UserProfileOnboard{
		Email:               "grace@example.com",
		Name:                "Grace",
		Faith_Stage:         models.FaithStageGrowing,
		Activity_Preference: "daily",
		Prayer_Focus:        []string{"Family"},
	}, "hash")
	require.NoError(t, err)
	env.grace = grace

	circle, err := env.s.CreateCircleFromMatch(grace.User_ID, models.MatchRecommendation{
		CandidateNames: []string{"Sarah", "Isaiah"},
		GroupType:      "Waiting Season",
	})
	require.NoError(t, err)
	env.circle = circle
	return env
}

func (env *testEnv) post(t *testing.T, actorID, content string) *models.Post {
	t.Helper()
	post, err := env.s.SubmitPost(actorID, env.circle.Circle_ID, models.PostSubmission{Content_Text: content})
	require.NoError(t, err)
	return post
}
