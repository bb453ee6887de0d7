package models

import "time"

// Activity action constants recorded in the circle_activity journal.
const (
	ActivityPostCreated     = "post_created"
	ActivityPostEdited      = "post_edited"
	ActivityPrayerAnswered  = "prayer_answered"
	ActivityPrayingStarted  = "praying_started"
	ActivityPrayingStopped  = "praying_stopped"
	ActivityPrayingExpired  = "praying_expired"
	ActivityResponseCreated = "response_created"
	ActivityReactionToggled = "reaction_toggled"
	ActivityCircleCreated   = "circle_created"
)

// CircleActivity is one row of the circle_activity journal.
type CircleActivity struct {
	Circle_Activity_ID int       `json:"circleActivityId" goqu:"skipinsert"`
	Circle_ID          string    `json:"circleId"`
	Post_ID            *string   `json:"postId"`
	User_ID            string    `json:"userId"`
	Action_Type        string    `json:"actionType"`
	Datetime_Create    time.Time `json:"datetimeCreate" goqu:"skipinsert"`
}
