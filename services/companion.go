package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

func companionAuthor() models.PostAuthor {
	photo := models.CompanionPhoto
	return models.PostAuthor{
		User_ID:   models.CompanionUserID,
		Name:      models.CompanionName,
		Photo_URL: &photo,
		Status:    models.UserStatusOnline,
	}
}

// companionEcho asks the gateway for the companion's reply to post and, after a
// short pause, adds it to the feed. Failures are logged and dropped.
func (s *Sanctuary) companionEcho(ctx context.Context, profile models.UserProfile, post models.Post, mode string) {
	aiCtx, cancel := context.WithTimeout(ctx, s.cfg.AITimeout)
	reply, err := s.gateway.GetAiPartnerResponse(aiCtx, profile, post)
	cancel()
	if err != nil {
		initializers.Log.Warnw("companion reply failed", "circleId", post.Circle_ID, "postId", post.Post_ID, "error", err)
		return
	}

	delay := s.cfg.CompanionReflectionDelay
	if mode == models.FeedModeChat {
		delay = s.cfg.CompanionChatDelay
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}

	if mode == models.FeedModeChat {
		s.appendCompanionMessage(post.Circle_ID, reply)
		return
	}
	s.appendCompanionResponse(post.Circle_ID, post.Post_ID, reply)
}

func (s *Sanctuary) appendCompanionMessage(circleID, text string) {
	s.mu.Lock()
	if _, ok := s.circles[circleID]; !ok {
		s.mu.Unlock()
		return
	}
	now := s.now()
	message := &models.Post{
		Post_ID:      uuid.NewString(),
		Circle_ID:    circleID,
		User:         companionAuthor(),
		Content_Text: text,
		Post_Type:    models.PostTypeChatMessage,
		Created_At:   now,
		Visibility:   models.VisibilityMembers,
		Reactions:    map[string][]string{},
		Responses:    []models.PostResponse{},
		Praying_Now:  []models.PrayingNow{},
	}
	s.prependPostLocked(circleID, message)
	s.touchCircleLocked(circleID, now)
	s.publishLocked(Event{Type: EventPostCreated, CircleID: circleID, Post: message})
	s.mu.Unlock()

}

func (s *Sanctuary) appendCompanionResponse(circleID, postID, text string) {
	s.mu.Lock()
	idx, existing, err := s.findPostLocked(circleID, postID)
	if err != nil {
		s.mu.Unlock()
		return
	}
	now := s.now()
	post := existing.Clone()
	post.Responses = append(post.Responses, models.PostResponse{
		Response_ID:  uuid.NewString(),
		User:         companionAuthor(),
		Content_Text: text,
		Created_At:   now,
		Is_Unread:    true,
	})
	post.Response_Count = len(post.Responses)
	post.Has_Unread_Responses = true
	s.replacePostLocked(circleID, idx, post)
	s.touchCircleLocked(circleID, now)
	s.publishLocked(Event{Type: EventPostUpdated, CircleID: circleID, Post: post})
	s.mu.Unlock()

}

// summarizePost attaches a short AI summary to a long post.
func (s *Sanctuary) summarizePost(ctx context.Context, circleID, postID, content string) {
	aiCtx, cancel := context.WithTimeout(ctx, s.cfg.AITimeout)
	summary, err := s.gateway.SummarizePost(aiCtx, content)
	cancel()
	if err != nil || summary == "" {
		if err != nil {
			initializers.Log.Warnw("post summary failed", "postId", postID, "error", err)
		}
		return
	}

	s.mu.Lock()
	idx, existing, err := s.findPostLocked(circleID, postID)
	if err != nil || existing.Content_Text != content {
		s.mu.Unlock()
		return
	}
	post := existing.Clone()
	post.Auto_Summary = summary
	s.replacePostLocked(circleID, idx, post)
	s.publishLocked(Event{Type: EventPostUpdated, CircleID: circleID, Post: post})
	s.mu.Unlock()

}
