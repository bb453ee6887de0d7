package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

const summaryWindow = 7 * 24 * time.Hour

type HomeDashboard struct {
	Encouragement          string                   `json:"encouragement"`
	Progress               models.IndividualSummary `json:"progress"`
	EncouragementAvailable bool                     `json:"encouragementAvailable"`
	ProgressAvailable      bool                     `json:"progressAvailable"`
}

func (s *Sanctuary) aiContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.AITimeout)
}

// MatchRecommendations asks the gateway to group the actor with seeded candidates.
func (s *Sanctuary) MatchRecommendations(ctx context.Context, actorID string) ([]models.MatchRecommendation, error) {
	actor, err := s.GetUser(actorID)
	if err != nil {
		return nil, err
	}
	candidates := s.DiscoveryCandidates(actorID)

	ctx, cancel := s.aiContext(ctx)
	defer cancel()
	return s.gateway.GetMatchingRecommendations(ctx, actor, candidates)
}

func (s *Sanctuary) SearchCommunity(ctx context.Context, query string) (models.CommunitySearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.CommunitySearchResult{}, ErrEmptySubmission
	}

	ctx, cancel := s.aiContext(ctx)
	defer cancel()
	return s.gateway.SearchCommunity(ctx, query, s.Corpus())
}

// RefreshEngagementPrompt generates a new reflection question for the circle and caches it.
func (s *Sanctuary) RefreshEngagementPrompt(ctx context.Context, actorID, circleID string) (models.EngagementPrompt, error) {
	s.mu.Lock()
	circle, err := s.memberCircleLocked(actorID, circleID)
	if err != nil {
		s.mu.Unlock()
		return models.EngagementPrompt{}, err
	}
	circleName := circle.Circle_Name
	memberNames := circle.MemberNames()
	recent := chronological(s.posts[circleID])
	s.mu.Unlock()

	ctx, cancel := s.aiContext(ctx)
	defer cancel()
	prompt, err := s.gateway.GetEngagementPrompt(ctx, circleName, recent, memberNames)
	if err != nil {
		return models.EngagementPrompt{}, err
	}
	if prompt.Text == "" {
		return prompt, nil
	}

	s.mu.Lock()
	if _, ok := s.circles[circleID]; ok {
		s.prompts[circleID] = prompt
		s.publishLocked(Event{Type: EventPromptReady, CircleID: circleID, Prompt: &prompt})
	}
	s.mu.Unlock()

	return prompt, nil
}

// GenerateCircleSummary summarizes the past week of a circle the actor belongs to
// and posts the result into the feed.
func (s *Sanctuary) GenerateCircleSummary(ctx context.Context, actorID, circleID string) (*models.Post, error) {
	s.mu.Lock()
	_, err := s.memberCircleLocked(actorID, circleID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.generateCircleSummary(ctx, circleID)
}

// RunWeeklySummaries generates a summary for every circle with activity in the past week.
func (s *Sanctuary) RunWeeklySummaries(ctx context.Context) int {
	s.mu.Lock()
	cutoff := s.now().Add(-summaryWindow)
	var due []string
	for circleID, circle := range s.circles {
		if circle.Circle_Type == models.CircleTypeAICompanion {
			continue
		}
		if len(weekPosts(s.posts[circleID], cutoff)) > 0 {
			due = append(due, circleID)
		}
	}
	s.mu.Unlock()

	generated := 0
	for _, circleID := range due {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.generateCircleSummary(ctx, circleID); err != nil {
			initializers.Log.Warnw("weekly summary failed", "circleId", circleID, "error", err)
			continue
		}
		generated++
	}
	initializers.Log.Infow("weekly summaries complete", "circles", len(due), "generated", generated)
	return generated
}

func (s *Sanctuary) generateCircleSummary(ctx context.Context, circleID string) (*models.Post, error) {
	s.mu.Lock()
	circle, ok := s.circles[circleID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrCircleNotFound
	}
	circleName := circle.Circle_Name
	posts := weekPosts(s.posts[circleID], s.now().Add(-summaryWindow))
	s.mu.Unlock()

	aiCtx, cancel := s.aiContext(ctx)
	summary, err := s.gateway.GenerateCircleSummary(aiCtx, circleID, circleName, posts)
	cancel()
	if err != nil {
		return nil, err
	}
	if summary.IsEmpty() {
		return nil, ErrEmptySummary
	}

	s.mu.Lock()
	circle, ok = s.circles[circleID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrCircleNotFound
	}
	now := s.now()
	content := summary.Celebration
	if content == "" {
		content = summary.Key_Moment
	}
	post := &models.Post{
		Post_ID:      uuid.NewString(),
		Circle_ID:    circleID,
		User:         companionAuthor(),
		Content_Text: content,
		Post_Type:    models.PostTypeSummary,
		Created_At:   now,
		Visibility:   models.VisibilityMembers,
		Reactions:    map[string][]string{},
		Responses:    []models.PostResponse{},
		Praying_Now:  []models.PrayingNow{},
		Summary_Data: &summary,
	}
	s.prependPostLocked(circleID, post)
	s.touchCircleLocked(circleID, now)
	s.bumpUnreadLocked(circle, models.CompanionUserID)

	var recipients []models.UserProfile
	for _, profile := range s.memberProfilesLocked(circle) {
		if profile.User_ID != models.CompanionUserID {
			recipients = append(recipients, profile)
		}
	}
	circleView := *circle
	s.publishLocked(Event{Type: EventPostCreated, CircleID: circleID, Post: post})
	s.mu.Unlock()

	s.record(circleID, &post.Post_ID, models.CompanionUserID, models.ActivityPostCreated)

	postCopy := *post
	if s.notifier != nil && len(recipients) > 0 {
		s.spawn(func(context.Context) {
			s.notifier.NotifyCircleOfSummary(recipients, circleView, postCopy)
		})
	}
	if s.mailer != nil {
		for _, recipient := range recipients {
			if recipient.Email == "" || !recipient.Notification_Settings.Circle_Activity {
				continue
			}
			recipient := recipient
			s.spawn(func(context.Context) {
				if err := s.mailer.SendCircleDigestEmail(recipient.Email, recipient.Name, circleView.Circle_Name, summary); err != nil {
					initializers.Log.Warnw("failed to send circle digest", "userId", recipient.User_ID, "circleId", circleID, "error", err)
				}
			})
		}
	}
	return post, nil
}

// Home fetches the daily encouragement and growth summary concurrently.
// Each half degrades to empty on its own.
func (s *Sanctuary) Home(ctx context.Context, actorID string) (HomeDashboard, error) {
	actor, err := s.GetUser(actorID)
	if err != nil {
		return HomeDashboard{}, err
	}
	posts := s.authoredPosts(actorID)

	ctx, cancel := s.aiContext(ctx)
	defer cancel()

	var home HomeDashboard
	var g errgroup.Group
	g.Go(func() error {
		text, err := s.gateway.GetDailyEncouragement(ctx, actor)
		if err != nil {
			initializers.Log.Debugw("daily encouragement unavailable", "userId", actorID, "error", err)
			return nil
		}
		home.Encouragement = text
		home.EncouragementAvailable = true
		return nil
	})
	g.Go(func() error {
		progress, err := s.gateway.GetIndividualProgress(ctx, actor, posts)
		if err != nil {
			initializers.Log.Debugw("individual progress unavailable", "userId", actorID, "error", err)
			return nil
		}
		home.Progress = progress
		home.ProgressAvailable = true
		return nil
	})
	_ = g.Wait()

	if home.Progress.Connected_Circles == nil {
		home.Progress.Connected_Circles = []string{}
	}
	if home.Progress.Personal_Themes == nil {
		home.Progress.Personal_Themes = []string{}
	}
	return home, nil
}

func (s *Sanctuary) authoredPosts(userID string) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []models.Post
	for circleID, circle := range s.circles {
		if !circle.HasMember(userID) {
			continue
		}
		for _, post := range s.posts[circleID] {
			if post.User.User_ID == userID {
				posts = append(posts, *post)
			}
		}
	}
	return posts
}

// chronological copies posts oldest first.
func chronological(posts []*models.Post) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for i := len(posts) - 1; i >= 0; i-- {
		out = append(out, *posts[i])
	}
	return out
}

// weekPosts returns member posts created after cutoff, oldest first.
func weekPosts(posts []*models.Post, cutoff time.Time) []models.Post {
	var out []models.Post
	for i := len(posts) - 1; i >= 0; i-- {
		post := posts[i]
		if post.Post_Type == models.PostTypeSummary || post.Post_Type == models.PostTypeAIPrompt {
			continue
		}
		if post.Created_At.After(cutoff) {
			out = append(out, *post)
		}
	}
	return out
}
