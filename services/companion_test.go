package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Siilah/models"
)

func companionCircle(t *testing.T, env *testEnv) models.Circle {
	t.Helper()
	circle, _, err := env.s.CreateCompanionCircle(env.grace.User_ID)
	require.NoError(t, err)
	return circle
}

func TestCompanionEcho_Reflection(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := newTestEnv(t)
	circle := companionCircle(t, env)

	post, err := env.s.SubmitPost(env.grace.User_ID, circle.Circle_ID, models.PostSubmission{Content_Text: "I feel far from God this week"})
	require.NoError(t, err)
	env.s.Wait()

	assert.Equal(t, 1, env.gateway.PartnerCalls())

	current, err := env.s.GetPost(env.grace.User_ID, circle.Circle_ID, post.Post_ID)
	require.NoError(t, err)
	require.Len(t, current.Responses, 1)
	assert.Equal(t, 1, current.Response_Count)
	assert.True(t, current.Has_Unread_Responses)

	reply := current.Responses[0]
	assert.Equal(t, models.CompanionUserID, reply.User.User_ID)
	assert.Equal(t, models.CompanionName, reply.User.Name)
	assert.Equal(t, "Praying with you.", reply.Content_Text)
	assert.True(t, reply.Is_Unread)

	posts, err := env.s.ListPosts(env.grace.User_ID, circle.Circle_ID)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	env.s.Close()
}

func TestCompanionEcho_ChatMode(t *testing.T) {
	env := newTestEnv(t)
	circle := companionCircle(t, env)
	env.gateway.partnerReply = "Tell me more."

	mine, err := env.s.SubmitPost(env.grace.User_ID, circle.Circle_ID, models.PostSubmission{
		Content_Text: "hello",
		Mode:         models.FeedModeChat,
	})
	require.NoError(t, err)
	env.s.Wait()

	assert.Equal(t, 1, env.gateway.PartnerCalls())

	posts, err := env.s.ListPosts(env.grace.User_ID, circle.Circle_ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, models.PostTypeChatMessage, posts[0].Post_Type)
	assert.Equal(t, models.CompanionUserID, posts[0].User.User_ID)
	assert.Equal(t, "Tell me more.", posts[0].Content_Text)
	assert.Same(t, mine, posts[1])
	assert.Empty(t, mine.Responses)
}

func TestCompanionEcho_ChatReplyWaitsForChatDelay(t *testing.T) {
	env := newTestEnv(t)
	env.s.cfg.CompanionChatDelay = 200 * time.Millisecond
	circle := companionCircle(t, env)

	start := time.Now()
	_, err := env.s.SubmitPost(env.grace.User_ID, circle.Circle_ID, models.PostSubmission{
		Content_Text: "good morning",
		Mode:         models.FeedModeChat,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return env.gateway.PartnerCalls() == 1 }, time.Second, 5*time.Millisecond)
	posts, err := env.s.ListPosts(env.grace.User_ID, circle.Circle_ID)
	require.NoError(t, err)
	assert.Len(t, posts, 1, "reply appended before the chat delay elapsed")

	env.s.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)

	posts, err = env.s.ListPosts(env.grace.User_ID, circle.Circle_ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, models.CompanionUserID, posts[0].User.User_ID)
}

func TestCompanionEcho_FailureIsSwallowed(t *testing.T) {
	env := newTestEnv(t)
	circle := companionCircle(t, env)
	env.gateway.err = errors.New("model overloaded")

	post, err := env.s.SubmitPost(env.grace.User_ID, circle.Circle_ID, models.PostSubmission{Content_Text: "Anyone there?"})
	require.NoError(t, err)
	env.s.Wait()

	assert.Equal(t, 1, env.gateway.PartnerCalls())
	current, err := env.s.GetPost(env.grace.User_ID, circle.Circle_ID, post.Post_ID)
	require.NoError(t, err)
	assert.Same(t, post, current)
	assert.Empty(t, current.Responses)
	assert.Equal(t, 0, current.Response_Count)
}

func TestCompanionEcho_OnlyInCompanionCircles(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, env.grace.User_ID, "Triad post")
	env.s.Wait()

	assert.Equal(t, 0, env.gateway.PartnerCalls())
}

func TestCompanionEcho_CloseCancelsPendingReply(t *testing.T) {
	defer goleak.VerifyNone(t)

	gateway := &fakeGateway{partnerReply: "Peace be with you."}
	cfg := DefaultSanctuaryConfig()
	cfg.CompanionReflectionDelay = time.Hour
	s := NewSanctuary(cfg, SanctuaryDeps{Gateway: gateway})

	user, err := s.RegisterUser(models.UserProfileOnboard{Email: "ruth@example.com", Name: "Ruth"}, "hash")
	require.NoError(t, err)
	circle, _, err := s.CreateCompanionCircle(user.User_ID)
	require.NoError(t, err)
	post, err := s.SubmitPost(user.User_ID, circle.Circle_ID, models.PostSubmission{Content_Text: "Long night"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not cancel the pending companion reply")
	}

	current, err := s.GetPost(user.User_ID, circle.Circle_ID, post.Post_ID)
	require.NoError(t, err)
	assert.Empty(t, current.Responses)
}

func TestCompanionEcho_UsesAITimeout(t *testing.T) {
	env := newTestEnv(t)
	env.s.cfg.AITimeout = time.Millisecond

	blocking := &blockingGateway{fakeGateway: env.gateway}
	env.s.gateway = blocking
	circle := companionCircle(t, env)

	_, err := env.s.SubmitPost(env.grace.User_ID, circle.Circle_ID, models.PostSubmission{Content_Text: "Are you there?"})
	require.NoError(t, err)
	env.s.Wait()

	assert.ErrorIs(t, blocking.err, context.DeadlineExceeded)
}

// blockingGateway holds partner replies until the caller's context ends.
type blockingGateway struct {
	*fakeGateway
	err error
}

func (b *blockingGateway) GetAiPartnerResponse(ctx context.Context, _ models.UserProfile, _ models.Post) (string, error) {
	<-ctx.Done()
	b.err = ctx.Err()
	return "", ctx.Err()
}
