package models

import "time"

const (
	PostTypePrayerRequest = "prayer_request"
	PostTypeTestimony     = "testimony"
	PostTypeStruggle      = "struggle"
	PostTypeGratitude     = "gratitude"
	PostTypeQuestion      = "question"
	PostTypeAIPrompt      = "ai_prompt"
	PostTypeSummary       = "summary"
	PostTypeChatMessage   = "chat_message"
)

const (
	VisibilityMembers = "members"
	VisibilityPublic  = "public"
)

// Feed modes a post can be submitted from.
const (
	FeedModeReflections = "reflections"
	FeedModeChat        = "chat"
)

// MaxVoiceNoteSeconds caps a recorded voice note.
const MaxVoiceNoteSeconds = 180

type PostAuthor struct {
	User_ID   string  `json:"userId"`
	Name      string  `json:"name"`
	Photo_URL *string `json:"photoUrl,omitempty"`
	Status    string  `json:"status,omitempty"`
}

type PostResponse struct {
	Response_ID    string     `json:"responseId"`
	User           PostAuthor `json:"user"`
	Content_Text   string     `json:"contentText,omitempty"`
	Voice_Note_URL string     `json:"voiceNoteUrl,omitempty"`
	Created_At     time.Time  `json:"createdAt"`
	Is_Unread      bool       `json:"isUnread"`
}

// PrayingNow marks one member actively interceding for a post.
// Started_At is kept as an RFC3339 string and parsed leniently when pruning.
type PrayingNow struct {
	User_ID     string  `json:"userId"`
	Name        string  `json:"name"`
	Prayer_Text *string `json:"prayerText,omitempty"`
	Started_At  string  `json:"startedAt"`
}

type Post struct {
	Post_ID              string              `json:"postId"`
	Circle_ID            string              `json:"circleId"`
	User                 PostAuthor          `json:"user"`
	Content_Text         string              `json:"contentText"`
	Post_Type            string              `json:"postType"`
	Created_At           time.Time           `json:"createdAt"`
	Visibility           string              `json:"visibility"`
	Is_Answered_Prayer   bool                `json:"isAnsweredPrayer"`
	Answered_At          *time.Time          `json:"answeredAt,omitempty"`
	Reactions            map[string][]string `json:"reactions"`
	Response_Count       int                 `json:"responseCount"`
	Responses            []PostResponse      `json:"responses"`
	Tags                 []string            `json:"tags,omitempty"`
	Voice_Note_URL       string              `json:"voiceNoteUrl,omitempty"`
	Voice_Note_Seconds   int                 `json:"voiceNoteSeconds,omitempty"`
	Photo_URLs           []string            `json:"photoUrls,omitempty"`
	Praying_Now          []PrayingNow        `json:"prayingNow"`
	Auto_Summary         string              `json:"autoSummary,omitempty"`
	Summary_Data         *CircleSummary      `json:"summaryData,omitempty"`
	Is_Edited            bool                `json:"isEdited"`
	Last_Edited_At       *time.Time          `json:"lastEditedAt,omitempty"`
	Has_Unread_Responses bool                `json:"hasUnreadResponses"`
}

// Clone returns a copy that shares no slices or maps with p.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Reactions = make(map[string][]string, len(p.Reactions))
	for emoji, names := range p.Reactions {
		cp.Reactions[emoji] = append([]string(nil), names...)
	}
	cp.Responses = append([]PostResponse(nil), p.Responses...)
	cp.Praying_Now = append([]PrayingNow(nil), p.Praying_Now...)
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Photo_URLs = append([]string(nil), p.Photo_URLs...)
	if p.Summary_Data != nil {
		sd := *p.Summary_Data
		cp.Summary_Data = &sd
	}
	return &cp
}

// PostSubmission is the compose box payload. Editing_Post_ID switches it to an edit.
type PostSubmission struct {
	Content_Text       string   `json:"contentText"`
	Post_Type          string   `json:"postType"`
	Mode               string   `json:"mode" binding:"omitempty,oneof=reflections chat"`
	Voice_Note_URL     string   `json:"voiceNoteUrl"`
	Voice_Note_Seconds int      `json:"voiceNoteSeconds"`
	Tags               []string `json:"tags"`
	Photo_URLs         []string `json:"photoUrls"`
	Editing_Post_ID    string   `json:"-"`
}

type ReplySubmission struct {
	Content_Text   string `json:"contentText"`
	Voice_Note_URL string `json:"voiceNoteUrl"`
}

type PrayerToggle struct {
	Prayer_Text *string `json:"prayerText"`
}

type ReactionToggle struct {
	Emoji string `json:"emoji" binding:"required"`
}
