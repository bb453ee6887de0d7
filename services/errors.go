package services

import "errors"

var (
	ErrCircleNotFound       = errors.New("circle not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrNotCircleMember      = errors.New("user is not a member of this circle")
	ErrNotAuthor            = errors.New("only the author can change this post")
	ErrEmptySubmission      = errors.New("submission has no content")
	ErrPrayerAnswered       = errors.New("prayer has already been answered")
	ErrVoiceNoteTooLong     = errors.New("voice note exceeds the maximum length")
	ErrInvalidPostType      = errors.New("invalid post type")
	ErrInvalidReaction      = errors.New("unsupported reaction")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrEmptyMatch           = errors.New("match recommendation has no candidates")
	ErrGatewayUnavailable   = errors.New("ai gateway unavailable")
	ErrEmptySummary         = errors.New("ai returned an empty circle summary")
	ErrVoiceNoteInvalid     = errors.New("voice note length cannot be negative")
)
