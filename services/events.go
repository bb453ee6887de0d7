package services

import (
	"time"

	"github.com/Siilah/models"
)

// Realtime event types pushed to circle subscribers.
const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPresencePruned = "presence.pruned"
	EventCircleUpdated  = "circle.updated"
	EventPromptReady    = "prompt.ready"
)

type Event struct {
	Type     string                   `json:"type"`
	CircleID string                   `json:"circleId"`
	Post     *models.Post             `json:"post,omitempty"`
	Circle   *models.Circle           `json:"circle,omitempty"`
	Prompt   *models.EngagementPrompt `json:"prompt,omitempty"`
	At       time.Time                `json:"at"`
}

// Broadcaster fans events out to live circle feeds. Publish must not block.
type Broadcaster interface {
	Publish(event Event)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Publish(Event) {}
