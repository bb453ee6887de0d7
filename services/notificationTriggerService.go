package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

// Praying notifications are sent at most once per author and post within this window.
const prayingDebounceWindow = 5 * time.Minute

// PushSender delivers a payload to a set of device tokens.
type PushSender interface {
	SendToTokens(ctx context.Context, tokens []models.PushToken, payload NotificationPayload) error
}

type debounceKey struct {
	notifType string
	userID    string
	entityID  string
}

// NotificationCenter keeps each member's inbox and push tokens and fans
// circle activity out to them.
type NotificationCenter struct {
	push PushSender
	now  func() time.Time

	mu       sync.Mutex
	inbox    map[string][]models.Notification
	tokens   map[string][]models.PushToken
	debounce map[debounceKey]time.Time
}

var _ Notifier = (*NotificationCenter)(nil)

func NewNotificationCenter(push PushSender) *NotificationCenter {
	return &NotificationCenter{
		push:     push,
		now:      time.Now,
		inbox:    make(map[string][]models.Notification),
		tokens:   make(map[string][]models.PushToken),
		debounce: make(map[debounceKey]time.Time),
	}
}

// shouldSendDebounced reports whether a notification may go out now, and
// starts a new window when it does. Entries older than a day are dropped.
func (n *NotificationCenter) shouldSendDebounced(notifType, targetUserID, entityID string, window time.Duration) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	for key, last := range n.debounce {
		if now.Sub(last) > 24*time.Hour {
			delete(n.debounce, key)
		}
	}

	key := debounceKey{notifType: notifType, userID: targetUserID, entityID: entityID}
	if last, ok := n.debounce[key]; ok && now.Sub(last) < window {
		return false
	}
	n.debounce[key] = now
	return true
}

// StorePushToken registers a device token, replacing an existing entry for the same token.
func (n *NotificationCenter) StorePushToken(userID string, req models.PushTokenRequest) models.PushToken {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	tokens := n.tokens[userID]
	for i, token := range tokens {
		if token.Push_Token == req.PushToken {
			tokens[i].Platform = req.Platform
			tokens[i].Updated_At = now
			return tokens[i]
		}
	}
	token := models.PushToken{
		User_ID:    userID,
		Push_Token: req.PushToken,
		Platform:   req.Platform,
		Created_At: now,
		Updated_At: now,
	}
	n.tokens[userID] = append(tokens, token)
	return token
}

func (n *NotificationCenter) pushTokens(userID string) []models.PushToken {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.PushToken(nil), n.tokens[userID]...)
}

// List returns the user's notifications, newest first.
func (n *NotificationCenter) List(userID string) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	list := append([]models.Notification{}, n.inbox[userID]...)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Created_At.After(list[j].Created_At)
	})
	return list
}

// ToggleRead flips a notification between read and unread.
func (n *NotificationCenter) ToggleRead(userID, notificationID string) (models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, notification := range n.inbox[userID] {
		if notification.Notification_ID != notificationID {
			continue
		}
		if notification.Read_At == nil {
			now := n.now()
			n.inbox[userID][i].Read_At = &now
		} else {
			n.inbox[userID][i].Read_At = nil
		}
		return n.inbox[userID][i], nil
	}
	return models.Notification{}, ErrNotificationNotFound
}

func (n *NotificationCenter) MarkAllRead(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	marked := 0
	for i := range n.inbox[userID] {
		if n.inbox[userID][i].Read_At == nil {
			n.inbox[userID][i].Read_At = &now
			marked++
		}
	}
	return marked
}

func (n *NotificationCenter) addToInbox(notification models.Notification) models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	notification.Notification_ID = uuid.NewString()
	notification.Created_At = n.now()
	n.inbox[notification.User_ID] = append(n.inbox[notification.User_ID], notification)
	return notification
}

func (n *NotificationCenter) sendPush(userID string, payload NotificationPayload) error {
	if n.push == nil {
		return fmt.Errorf("push notification service not available")
	}
	tokens := n.pushTokens(userID)
	if len(tokens) == 0 {
		return fmt.Errorf("no push tokens found for user %s", userID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return n.push.SendToTokens(ctx, tokens, payload)
}

// deliver writes an inbox entry and, when the recipient allows it, a push.
func (n *NotificationCenter) deliver(recipient models.UserProfile, notification models.Notification, allowPush bool, data map[string]string) {
	notification.User_ID = recipient.User_ID
	n.addToInbox(notification)

	if !allowPush || !recipient.Notification_Settings.Push_Enabled {
		return
	}
	payload := NotificationPayload{
		Title: notification.Title,
		Body:  notification.Body,
		Data:  data,
		Sound: "default",
	}
	if err := n.sendPush(recipient.User_ID, payload); err != nil {
		initializers.Log.Debugw("push notification not delivered", "userId", recipient.User_ID, "type", notification.Type, "error", err)
	}
}

// NotifyAuthorOfPraying tells an author someone started praying for their post.
// Debounced per author and post.
func (n *NotificationCenter) NotifyAuthorOfPraying(author models.UserProfile, actorName string, circle models.Circle, post models.Post) {
	if author.User_ID == models.CompanionUserID {
		return
	}
	if !n.shouldSendDebounced(models.NotificationTypePrayingForYou, author.User_ID, post.Post_ID, prayingDebounceWindow) {
		initializers.Log.Debugw("debounced praying notification", "userId", author.User_ID, "postId", post.Post_ID)
		return
	}

	circleID, postID := circle.Circle_ID, post.Post_ID
	n.deliver(author, models.Notification{
		Type:             models.NotificationTypePrayingForYou,
		Title:            circle.Circle_Name,
		Body:             fmt.Sprintf("%s is praying for you right now", actorName),
		Target_Circle_ID: &circleID,
		Target_Post_ID:   &postID,
	}, author.Notification_Settings.Prayer_Requests, map[string]string{
		"type":     "praying_for_you",
		"circleId": circleID,
		"postId":   postID,
	})
}

func (n *NotificationCenter) NotifyAuthorOfResponse(author models.UserProfile, actorName string, circle models.Circle, post models.Post) {
	if author.User_ID == models.CompanionUserID {
		return
	}

	circleID, postID := circle.Circle_ID, post.Post_ID
	n.deliver(author, models.Notification{
		Type:             models.NotificationTypeNewResponse,
		Title:            circle.Circle_Name,
		Body:             fmt.Sprintf("%s responded to your post", actorName),
		Target_Circle_ID: &circleID,
		Target_Post_ID:   &postID,
	}, author.Notification_Settings.Messages, map[string]string{
		"type":     "new_response",
		"circleId": circleID,
		"postId":   postID,
	})
}

func (n *NotificationCenter) NotifyCircleOfAnsweredPrayer(recipients []models.UserProfile, actorName string, circle models.Circle, post models.Post) {
	circleID, postID := circle.Circle_ID, post.Post_ID
	for _, recipient := range recipients {
		n.deliver(recipient, models.Notification{
			Type:             models.NotificationTypePrayerAnswered,
			Title:            circle.Circle_Name,
			Body:             fmt.Sprintf("%s's prayer was answered", actorName),
			Target_Circle_ID: &circleID,
			Target_Post_ID:   &postID,
		}, recipient.Notification_Settings.Circle_Activity, map[string]string{
			"type":     "prayer_answered",
			"circleId": circleID,
			"postId":   postID,
		})
	}
}

func (n *NotificationCenter) NotifyCircleOfSummary(recipients []models.UserProfile, circle models.Circle, summary models.Post) {
	circleID, postID := circle.Circle_ID, summary.Post_ID
	for _, recipient := range recipients {
		n.deliver(recipient, models.Notification{
			Type:             models.NotificationTypeCircleSummary,
			Title:            circle.Circle_Name,
			Body:             "Your weekly circle summary is ready",
			Target_Circle_ID: &circleID,
			Target_Post_ID:   &postID,
		}, recipient.Notification_Settings.Circle_Activity, map[string]string{
			"type":     "circle_summary",
			"circleId": circleID,
			"postId":   postID,
		})
	}
}

// SendAnnouncement delivers an admin broadcast to the given users. It returns
// how many users were reached.
func (n *NotificationCenter) SendAnnouncement(recipients []models.UserProfile, title, body string) int {
	for _, recipient := range recipients {
		n.deliver(recipient, models.Notification{
			Type:  models.NotificationTypeAnnouncement,
			Title: title,
			Body:  body,
		}, true, map[string]string{"type": "announcement"})
	}
	return len(recipients)
}

var notificationCenter *NotificationCenter

func InitNotificationCenter(push PushSender) *NotificationCenter {
	notificationCenter = NewNotificationCenter(push)
	return notificationCenter
}

func GetNotificationCenter() *NotificationCenter {
	return notificationCenter
}

// SetNotificationCenter swaps the process-wide center and returns the previous one.
func SetNotificationCenter(n *NotificationCenter) *NotificationCenter {
	previous := notificationCenter
	notificationCenter = n
	return previous
}
