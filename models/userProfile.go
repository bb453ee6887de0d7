package models

import "time"

// Faith stages a member can declare during onboarding.
const (
	FaithStageExploring      = "exploring"
	FaithStageNewBeliever    = "new_believer"
	FaithStageGrowing        = "growing"
	FaithStageEstablished    = "established"
	FaithStageDeconstructing = "deconstructing"
)

// Presence status shown next to a member's name.
const (
	UserStatusOnline  = "online"
	UserStatusAway    = "away"
	UserStatusOffline = "offline"
)

const (
	PrivacyPublic      = "public"
	PrivacyFriendsOnly = "friends_only"
	PrivacyPrivate     = "private"
)

type UserLocation struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

type PrivacySettings struct {
	Profile_Visibility string `json:"profileVisibility"`
	Posts_Visibility   string `json:"postsVisibility"`
}

type NotificationSettings struct {
	Push_Enabled    bool `json:"pushEnabled"`
	Prayer_Requests bool `json:"prayerRequests"`
	Circle_Activity bool `json:"circleActivity"`
	Messages        bool `json:"messages"`
}

type UserProfile struct {
	User_ID                string               `json:"userId"`
	Email                  string               `json:"email"`
	Password               string               `json:"-" yaml:"-"`
	Name                   string               `json:"name"`
	Photo_URL              *string              `json:"photoUrl,omitempty"`
	Location               *UserLocation        `json:"location,omitempty"`
	Faith_Stage            string               `json:"faithStage"`
	Seeking_Goals          []string             `json:"seekingGoals"`
	Sharing_Comfort        string               `json:"sharingComfort"`
	Activity_Preference    string               `json:"activityPreference"`
	Prayer_Focus           []string             `json:"prayerFocus"`
	Christian_Tradition    string               `json:"christianTradition"`
	Life_Stages            []string             `json:"lifeStages"`
	Timezone_Preference    string               `json:"timezonePreference"`
	Personality_Indicators []string             `json:"personalityIndicators"`
	Status                 string               `json:"status"`
	Current_Status         string               `json:"currentStatus"`
	Privacy_Settings       PrivacySettings      `json:"privacySettings"`
	Notification_Settings  NotificationSettings `json:"notificationSettings"`
	Admin                  bool                 `json:"admin"`
	Datetime_Create        time.Time            `json:"datetimeCreate"`
	Datetime_Update        time.Time            `json:"datetimeUpdate"`
}

// UserProfileOnboard is the payload submitted when the onboarding wizard completes.
type UserProfileOnboard struct {
	Email                  string                `json:"email" binding:"required,email"`
	Password               string                `json:"password" binding:"required,min=6"`
	Name                   string                `json:"name" binding:"required"`
	Photo_URL              *string               `json:"photoUrl"`
	Location               *UserLocation         `json:"location"`
	Faith_Stage            string                `json:"faithStage" binding:"required,oneof=exploring new_believer growing established deconstructing"`
	Seeking_Goals          []string              `json:"seekingGoals"`
	Sharing_Comfort        string                `json:"sharingComfort" binding:"omitempty,oneof=one_on_one small_group either"`
	Activity_Preference    string                `json:"activityPreference" binding:"omitempty,oneof=daily weekly biweekly"`
	Prayer_Focus           []string              `json:"prayerFocus"`
	Christian_Tradition    string                `json:"christianTradition"`
	Life_Stages            []string              `json:"lifeStages"`
	Timezone_Preference    string                `json:"timezonePreference" binding:"omitempty,oneof=morning evening flexible"`
	Personality_Indicators []string              `json:"personalityIndicators"`
	Current_Status         string                `json:"currentStatus" binding:"omitempty,oneof=online away offline"`
	Privacy_Settings       *PrivacySettings      `json:"privacySettings"`
	Notification_Settings  *NotificationSettings `json:"notificationSettings"`
}

// UserProfileUpdate carries the fields editable from profile settings.
// Nil fields are left untouched.
type UserProfileUpdate struct {
	Name                  *string               `json:"name"`
	Photo_URL             *string               `json:"photoUrl"`
	Location              *UserLocation         `json:"location"`
	Faith_Stage           *string               `json:"faithStage" binding:"omitempty,oneof=exploring new_believer growing established deconstructing"`
	Prayer_Focus          []string              `json:"prayerFocus"`
	Life_Stages           []string              `json:"lifeStages"`
	Activity_Preference   *string               `json:"activityPreference" binding:"omitempty,oneof=daily weekly biweekly"`
	Timezone_Preference   *string               `json:"timezonePreference" binding:"omitempty,oneof=morning evening flexible"`
	Current_Status        *string               `json:"currentStatus" binding:"omitempty,oneof=online away offline"`
	Privacy_Settings      *PrivacySettings      `json:"privacySettings"`
	Notification_Settings *NotificationSettings `json:"notificationSettings"`
}

type Login struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
