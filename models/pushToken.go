package models

import "time"

type PushToken struct {
	User_ID    string    `json:"userId"`
	Push_Token string    `json:"pushToken"`
	Platform   string    `json:"platform"`
	Created_At time.Time `json:"createdAt"`
	Updated_At time.Time `json:"updatedAt"`
}

type PushTokenRequest struct {
	PushToken string `json:"pushToken" binding:"required"`
	Platform  string `json:"platform" binding:"required,oneof=ios android"`
}
