package models

import "time"

const (
	CircleTypeTriad       = "triad"
	CircleTypeOneOnOne    = "one_on_one"
	CircleTypeSmallGroup  = "small_group"
	CircleTypeAICompanion = "ai_companion"
)

// The AI companion is represented as a regular circle member with a fixed identity.
const (
	CompanionUserID     = "siilah_ai"
	CompanionName       = "Siilah"
	CompanionPhoto      = "siilah_logo"
	CompanionCircleName = "Sacred Sanctuary"
)

type CircleMember struct {
	User_ID         string    `json:"userId"`
	Name            string    `json:"name"`
	Joined_At       time.Time `json:"joinedAt"`
	Posts_Count     int       `json:"postsCount"`
	Responses_Count int       `json:"responsesCount"`
	Status          string    `json:"status,omitempty"`
}

type Circle struct {
	Circle_ID        string         `json:"circleId"`
	Circle_Name      string         `json:"circleName"`
	Circle_Type      string         `json:"circleType"`
	Activity_Level   string         `json:"activityLevel"`
	Member_Count     int            `json:"memberCount"`
	Members          []CircleMember `json:"members"`
	Unread_Count     int            `json:"unreadCount"`
	Last_Activity_At time.Time      `json:"lastActivityAt"`
	Created_At       time.Time      `json:"createdAt"`
	Health_Score     float64        `json:"healthScore"`
}

// HasMember reports whether userID belongs to the circle.
func (c *Circle) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m.User_ID == userID {
			return true
		}
	}
	return false
}

// MemberNames lists the display names of every member, in membership order.
func (c *Circle) MemberNames() []string {
	names := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		names = append(names, m.Name)
	}
	return names
}

// Clone returns a copy with its own member list.
func (c *Circle) Clone() *Circle {
	cp := *c
	cp.Members = append([]CircleMember(nil), c.Members...)
	return &cp
}
