package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Siilah/models"
)

// Posts longer than this many characters get an AI summary.
const autoSummaryThreshold = 500

// Used in circle names when a match recommendation has no group type.
const defaultGroupType = "Prayer"

// AllowedReactions is the reaction bar offered on every post.
var AllowedReactions = []string{"🙏", "❤️", "🙌", "✨", "😢"}

var submittablePostTypes = map[string]bool{
	models.PostTypePrayerRequest: true,
	models.PostTypeTestimony:     true,
	models.PostTypeStruggle:      true,
	models.PostTypeGratitude:     true,
	models.PostTypeQuestion:      true,
	models.PostTypeChatMessage:   true,
}

func resolvePostType(sub models.PostSubmission) (string, error) {
	if sub.Mode == models.FeedModeChat {
		return models.PostTypeChatMessage, nil
	}
	if sub.Post_Type == "" {
		return models.PostTypePrayerRequest, nil
	}
	if !submittablePostTypes[sub.Post_Type] {
		return "", fmt.Errorf("%w: %q", ErrInvalidPostType, sub.Post_Type)
	}
	return sub.Post_Type, nil
}

func isAllowedReaction(emoji string) bool {
	for _, allowed := range AllowedReactions {
		if allowed == emoji {
			return true
		}
	}
	return false
}

func authorOf(user *models.UserProfile) models.PostAuthor {
	return models.PostAuthor{
		User_ID:   user.User_ID,
		Name:      user.Name,
		Photo_URL: user.Photo_URL,
		Status:    user.Current_Status,
	}
}

func formatStartedAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// SubmitPost creates a post in the circle, or edits one when sub.Editing_Post_ID is set.
func (s *Sanctuary) SubmitPost(actorID, circleID string, sub models.PostSubmission) (*models.Post, error) {
	content := strings.TrimSpace(sub.Content_Text)
	hasVoice := strings.TrimSpace(sub.Voice_Note_URL) != ""
	if content == "" && !hasVoice {
		return nil, ErrEmptySubmission
	}
	if sub.Voice_Note_Seconds < 0 {
		return nil, ErrVoiceNoteInvalid
	}
	if sub.Voice_Note_Seconds > models.MaxVoiceNoteSeconds {
		return nil, ErrVoiceNoteTooLong
	}
	postType, err := resolvePostType(sub)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	circle, err := s.memberCircleLocked(actorID, circleID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	actor := s.users[actorID]
	now := s.now()

	var post *models.Post
	edited := sub.Editing_Post_ID != ""
	if edited {
		idx, existing, err := s.findPostLocked(circleID, sub.Editing_Post_ID)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		if existing.User.User_ID != actorID {
			s.mu.Unlock()
			return nil, ErrNotAuthor
		}

		post = existing.Clone()
		if post.Content_Text != content {
			post.Auto_Summary = ""
		}
		post.Content_Text = content
		post.Post_Type = postType
		if hasVoice {
			post.Voice_Note_URL = sub.Voice_Note_URL
			post.Voice_Note_Seconds = sub.Voice_Note_Seconds
		}
		if sub.Tags != nil {
			post.Tags = sub.Tags
		}
		if sub.Photo_URLs != nil {
			post.Photo_URLs = sub.Photo_URLs
		}
		post.Is_Edited = true
		post.Last_Edited_At = &now
		s.replacePostLocked(circleID, idx, post)
	} else {
		visibility := models.VisibilityMembers
		if actor.Privacy_Settings.Posts_Visibility == models.PrivacyPublic {
			visibility = models.VisibilityPublic
		}
		post = &models.Post{
			Post_ID:            uuid.NewString(),
			Circle_ID:          circleID,
			User:               authorOf(actor),
			Content_Text:       content,
			Post_Type:          postType,
			Created_At:         now,
			Visibility:         visibility,
			Is_Answered_Prayer: false,
			Reactions:          map[string][]string{},
			Response_Count:     0,
			Responses:          []models.PostResponse{},
			Tags:               sub.Tags,
			Photo_URLs:         sub.Photo_URLs,
			Praying_Now:        []models.PrayingNow{},
		}
		if hasVoice {
			post.Voice_Note_URL = sub.Voice_Note_URL
			post.Voice_Note_Seconds = sub.Voice_Note_Seconds
		}
		s.prependPostLocked(circleID, post)
		s.bumpUnreadLocked(circle, actorID)
	}

	updated := s.touchCircleLocked(circleID, now)
	if !edited {
		bumpMemberCounts(updated, actorID, 1, 0)
	}
	profile := *actor
	companion := circle.Circle_Type == models.CircleTypeAICompanion
	if edited {
		s.publishLocked(Event{Type: EventPostUpdated, CircleID: circleID, Post: post})
	} else {
		s.publishLocked(Event{Type: EventPostCreated, CircleID: circleID, Post: post})
	}
	s.mu.Unlock()

	if edited {
		s.record(circleID, &post.Post_ID, actorID, models.ActivityPostEdited)
	} else {
		s.record(circleID, &post.Post_ID, actorID, models.ActivityPostCreated)
	}
	recordPostSubmitted(postType)

	if utf8.RuneCountInString(content) > autoSummaryThreshold && post.Auto_Summary == "" {
		postID := post.Post_ID
		s.spawn(func(ctx context.Context) {
			s.summarizePost(ctx, circleID, postID, content)
		})
	}
	if companion {
		snapshot := *post
		mode := sub.Mode
		s.spawn(func(ctx context.Context) {
			s.companionEcho(ctx, profile, snapshot, mode)
		})
	}
	return post, nil
}

// TogglePrayer starts or stops the actor praying for a post.
func (s *Sanctuary) TogglePrayer(actorID, circleID, postID string, prayerText *string) (*models.Post, error) {
	s.mu.Lock()
	circle, err := s.memberCircleLocked(actorID, circleID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	idx, existing, err := s.findPostLocked(circleID, postID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if existing.Is_Answered_Prayer {
		s.mu.Unlock()
		return nil, ErrPrayerAnswered
	}

	actor := s.users[actorID]
	post := existing.Clone()
	started := true
	for i, entry := range post.Praying_Now {
		if entry.User_ID == actorID {
			post.Praying_Now = append(post.Praying_Now[:i:i], post.Praying_Now[i+1:]...)
			started = false
			break
		}
	}
	if started {
		entry := models.PrayingNow{
			User_ID:    actorID,
			Name:       actor.Name,
			Started_At: formatStartedAt(s.now()),
		}
		if prayerText != nil && strings.TrimSpace(*prayerText) != "" {
			text := strings.TrimSpace(*prayerText)
			entry.Prayer_Text = &text
		}
		post.Praying_Now = append(post.Praying_Now, entry)
		s.prayingNow++
	} else {
		s.prayingNow--
	}
	s.replacePostLocked(circleID, idx, post)
	setPrayingNowGauge(s.prayingNow)

	author, hasAuthor := s.users[post.User.User_ID]
	circleView := *circle
	actorName := actor.Name
	s.publishLocked(Event{Type: EventPostUpdated, CircleID: circleID, Post: post})
	s.mu.Unlock()

	if started {
		s.record(circleID, &post.Post_ID, actorID, models.ActivityPrayingStarted)
		if hasAuthor && author.User_ID != actorID && s.notifier != nil {
			authorCopy, postCopy := *author, *post
			s.spawn(func(context.Context) {
				s.notifier.NotifyAuthorOfPraying(authorCopy, actorName, circleView, postCopy)
			})
		}
	} else {
		s.record(circleID, &post.Post_ID, actorID, models.ActivityPrayingStopped)
	}
	return post, nil
}

// MarkAnswered flags the author's prayer as answered. Repeated calls leave it unchanged.
func (s *Sanctuary) MarkAnswered(actorID, circleID, postID string) (*models.Post, error) {
	s.mu.Lock()
	circle, err := s.memberCircleLocked(actorID, circleID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	idx, existing, err := s.findPostLocked(circleID, postID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if existing.User.User_ID != actorID {
		s.mu.Unlock()
		return nil, ErrNotAuthor
	}
	if existing.Is_Answered_Prayer {
		s.mu.Unlock()
		return existing, nil
	}

	now := s.now()
	post := existing.Clone()
	post.Is_Answered_Prayer = true
	post.Answered_At = &now
	s.replacePostLocked(circleID, idx, post)
	s.touchCircleLocked(circleID, now)

	var recipients []models.UserProfile
	for _, profile := range s.memberProfilesLocked(circle) {
		if profile.User_ID != actorID && profile.User_ID != models.CompanionUserID {
			recipients = append(recipients, profile)
		}
	}
	circleView := *circle
	actorName := s.users[actorID].Name
	s.publishLocked(Event{Type: EventPostUpdated, CircleID: circleID, Post: post})
	s.mu.Unlock()

	s.record(circleID, &post.Post_ID, actorID, models.ActivityPrayerAnswered)
	if len(recipients) > 0 && s.notifier != nil {
		postCopy := *post
		s.spawn(func(context.Context) {
			s.notifier.NotifyCircleOfAnsweredPrayer(recipients, actorName, circleView, postCopy)
		})
	}
	return post, nil
}

// SubmitReply appends a response to a post.
func (s *Sanctuary) SubmitReply(actorID, circleID, postID string, reply models.ReplySubmission) (*models.Post, error) {
	content := strings.TrimSpace(reply.Content_Text)
	voice := strings.TrimSpace(reply.Voice_Note_URL)
	if content == "" && voice == "" {
		return nil, ErrEmptySubmission
	}

	s.mu.Lock()
	circle, err := s.memberCircleLocked(actorID, circleID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	idx, existing, err := s.findPostLocked(circleID, postID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.now()
	actor := s.users[actorID]
	post := existing.Clone()
	response := models.PostResponse{
		Response_ID:    uuid.NewString(),
		User:           authorOf(actor),
		Content_Text:   content,
		Voice_Note_URL: voice,
		Created_At:     now,
		Is_Unread:      actorID != post.User.User_ID,
	}
	post.Responses = append(post.Responses, response)
	post.Response_Count = len(post.Responses)
	if response.Is_Unread {
		post.Has_Unread_Responses = true
	}
	s.replacePostLocked(circleID, idx, post)
	updated := s.touchCircleLocked(circleID, now)
	bumpMemberCounts(updated, actorID, 0, 1)

	author, hasAuthor := s.users[post.User.User_ID]
	circleView := *circle
	actorName := actor.Name
	s.publishLocked(Event{Type: EventPostUpdated, CircleID: circleID, Post: post})
	s.mu.Unlock()

	s.record(circleID, &post.Post_ID, actorID, models.ActivityResponseCreated)
	if hasAuthor && author.User_ID != actorID && s.notifier != nil {
		authorCopy, postCopy := *author, *post
		s.spawn(func(context.Context) {
			s.notifier.NotifyAuthorOfResponse(authorCopy, actorName, circleView, postCopy)
		})
	}
	return post, nil
}

// ReactToPost toggles the actor's reaction with emoji.
func (s *Sanctuary) ReactToPost(actorID, circleID, postID, emoji string) (*models.Post, error) {
	if !isAllowedReaction(emoji) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReaction, emoji)
	}

	s.mu.Lock()
	if _, err := s.memberCircleLocked(actorID, circleID); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	idx, existing, err := s.findPostLocked(circleID, postID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	name := s.users[actorID].Name
	post := existing.Clone()
	reactors := post.Reactions[emoji]
	removed := false
	for i, reactor := range reactors {
		if reactor == name {
			reactors = append(reactors[:i:i], reactors[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		reactors = append(reactors, name)
	}
	if len(reactors) == 0 {
		delete(post.Reactions, emoji)
	} else {
		post.Reactions[emoji] = reactors
	}
	s.replacePostLocked(circleID, idx, post)
	s.publishLocked(Event{Type: EventPostUpdated, CircleID: circleID, Post: post})
	s.mu.Unlock()

	s.record(circleID, &post.Post_ID, actorID, models.ActivityReactionToggled)
	return post, nil
}

// MarkResponsesRead clears the unread flag on every response to the author's post.
func (s *Sanctuary) MarkResponsesRead(actorID, circleID, postID string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.memberCircleLocked(actorID, circleID); err != nil {
		return nil, err
	}
	idx, existing, err := s.findPostLocked(circleID, postID)
	if err != nil {
		return nil, err
	}
	if existing.User.User_ID != actorID {
		return nil, ErrNotAuthor
	}
	if !existing.Has_Unread_Responses {
		return existing, nil
	}

	post := existing.Clone()
	for i := range post.Responses {
		post.Responses[i].Is_Unread = false
	}
	post.Has_Unread_Responses = false
	s.replacePostLocked(circleID, idx, post)
	return post, nil
}

// MarkCircleRead resets the actor's unread counter for the circle.
func (s *Sanctuary) MarkCircleRead(actorID, circleID string) (models.Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	circle, err := s.memberCircleLocked(actorID, circleID)
	if err != nil {
		return models.Circle{}, err
	}
	delete(s.unread[circleID], actorID)
	return s.viewCircleLocked(circle, actorID), nil
}

// CreateCircleFromMatch turns an accepted match recommendation into a triad
// made of the actor and the recommended people.
func (s *Sanctuary) CreateCircleFromMatch(actorID string, rec models.MatchRecommendation) (models.Circle, error) {
	if len(rec.CandidateNames) == 0 {
		return models.Circle{}, ErrEmptyMatch
	}

	s.mu.Lock()
	actor, ok := s.users[actorID]
	if !ok {
		s.mu.Unlock()
		return models.Circle{}, ErrUserNotFound
	}

	now := s.now()
	members := []models.CircleMember{{
		User_ID:   actor.User_ID,
		Name:      actor.Name,
		Joined_At: now,
		Status:    actor.Current_Status,
	}}
	seen := map[string]bool{actor.User_ID: true}
	for _, name := range rec.CandidateNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		member := models.CircleMember{Name: name, Joined_At: now, Status: models.UserStatusOffline}
		if person, found := s.findPersonByNameLocked(name); found {
			member.User_ID = person.User_ID
			member.Name = person.Name
			member.Status = person.Current_Status
		} else {
			member.User_ID = uuid.NewString()
		}
		if seen[member.User_ID] {
			continue
		}
		seen[member.User_ID] = true
		members = append(members, member)
	}
	if len(members) == 1 {
		s.mu.Unlock()
		return models.Circle{}, ErrEmptyMatch
	}

	groupType := strings.TrimSpace(rec.GroupType)
	if groupType == "" {
		groupType = defaultGroupType
	}
	circle := &models.Circle{
		Circle_ID:        uuid.NewString(),
		Circle_Name:      fmt.Sprintf("%s Triad", groupType),
		Circle_Type:      models.CircleTypeTriad,
		Activity_Level:   actor.Activity_Preference,
		Member_Count:     len(members),
		Members:          members,
		Last_Activity_At: now,
		Created_At:       now,
		Health_Score:     1.0,
	}
	s.addCircleLocked(circle)
	view := s.viewCircleLocked(circle, actorID)
	s.publishLocked(Event{Type: EventCircleUpdated, CircleID: circle.Circle_ID, Circle: &view})
	s.mu.Unlock()

	s.record(circle.Circle_ID, nil, actorID, models.ActivityCircleCreated)
	return view, nil
}

// CreateCompanionCircle returns the actor's AI companion circle, creating it on first use.
func (s *Sanctuary) CreateCompanionCircle(actorID string) (models.Circle, bool, error) {
	s.mu.Lock()
	actor, ok := s.users[actorID]
	if !ok {
		s.mu.Unlock()
		return models.Circle{}, false, ErrUserNotFound
	}
	for _, existing := range s.circles {
		if existing.Circle_Type == models.CircleTypeAICompanion && existing.HasMember(actorID) {
			view := s.viewCircleLocked(existing, actorID)
			s.mu.Unlock()
			return view, false, nil
		}
	}

	now := s.now()
	circle := &models.Circle{
		Circle_ID:      "ai_sanctuary_" + actorID,
		Circle_Name:    models.CompanionCircleName,
		Circle_Type:    models.CircleTypeAICompanion,
		Activity_Level: "daily",
		Member_Count:   2,
		Members: []models.CircleMember{
			{User_ID: actor.User_ID, Name: actor.Name, Joined_At: now, Status: actor.Current_Status},
			{User_ID: models.CompanionUserID, Name: models.CompanionName, Joined_At: now, Responses_Count: 999, Status: models.UserStatusOnline},
		},
		Last_Activity_At: now,
		Created_At:       now,
		Health_Score:     1.0,
	}
	s.addCircleLocked(circle)
	view := s.viewCircleLocked(circle, actorID)
	s.mu.Unlock()

	s.record(circle.Circle_ID, nil, actorID, models.ActivityCircleCreated)
	return view, true, nil
}

func (s *Sanctuary) findPersonByNameLocked(name string) (*models.UserProfile, bool) {
	for _, person := range s.corpus.People {
		if strings.EqualFold(person.Name, name) {
			if user, ok := s.users[person.User_ID]; ok {
				return user, true
			}
		}
	}
	return nil, false
}

// bumpMemberCounts adjusts per-member activity counters on a circle copy that
// has not been shared with readers yet.
func bumpMemberCounts(circle *models.Circle, userID string, posts, responses int) {
	for i := range circle.Members {
		if circle.Members[i].User_ID == userID {
			circle.Members[i].Posts_Count += posts
			circle.Members[i].Responses_Count += responses
			return
		}
	}
}
