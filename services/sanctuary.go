package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

type SanctuaryConfig struct {
	PresenceTTL              time.Duration
	CompanionChatDelay       time.Duration
	CompanionReflectionDelay time.Duration
	AITimeout                time.Duration
	AdminEmails              []string
}

func DefaultSanctuaryConfig() SanctuaryConfig {
	return SanctuaryConfig{
		PresenceTTL:              5 * time.Minute,
		CompanionChatDelay:       1200 * time.Millisecond,
		CompanionReflectionDelay: 1500 * time.Millisecond,
		AITimeout:                30 * time.Second,
	}
}

// Notifier delivers inbox and push notifications for circle activity.
type Notifier interface {
	NotifyAuthorOfPraying(author models.UserProfile, actorName string, circle models.Circle, post models.Post)
	NotifyAuthorOfResponse(author models.UserProfile, actorName string, circle models.Circle, post models.Post)
	NotifyCircleOfAnsweredPrayer(recipients []models.UserProfile, actorName string, circle models.Circle, post models.Post)
	NotifyCircleOfSummary(recipients []models.UserProfile, circle models.Circle, summary models.Post)
}

// ActivityRecorder appends entries to the circle activity journal.
type ActivityRecorder interface {
	Record(ctx context.Context, activity models.CircleActivity) error
}

// DigestMailer emails a generated circle summary to a member.
type DigestMailer interface {
	SendCircleDigestEmail(toEmail, name, circleName string, summary models.CircleSummary) error
}

type SanctuaryDeps struct {
	Gateway     Gateway
	Notifier    Notifier
	Broadcaster Broadcaster
	Journal     ActivityRecorder
	Mailer      DigestMailer
	Clock       func() time.Time
}

// Sanctuary owns every user, circle and post for the lifetime of the process.
// Stored posts and circles are never mutated in place: each change swaps in a
// fresh copy, so pointers handed to readers stay stable.
type Sanctuary struct {
	cfg         SanctuaryConfig
	gateway     Gateway
	notifier    Notifier
	broadcaster Broadcaster
	journal     ActivityRecorder
	mailer      DigestMailer
	now         func() time.Time

	mu          sync.Mutex
	users       map[string]*models.UserProfile
	emails      map[string]string
	circles     map[string]*models.Circle
	posts       map[string][]*models.Post
	unread      map[string]map[string]int
	prompts     map[string]models.EngagementPrompt
	corpus      models.DiscoveryCorpus
	prayingNow  int
	adminEmails map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var sanctuary *Sanctuary

func NewSanctuary(cfg SanctuaryConfig, deps SanctuaryDeps) *Sanctuary {
	defaults := DefaultSanctuaryConfig()
	if cfg.PresenceTTL <= 0 {
		cfg.PresenceTTL = defaults.PresenceTTL
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = defaults.AITimeout
	}

	s := &Sanctuary{
		cfg:         cfg,
		gateway:     deps.Gateway,
		notifier:    deps.Notifier,
		broadcaster: deps.Broadcaster,
		journal:     deps.Journal,
		mailer:      deps.Mailer,
		now:         deps.Clock,
		users:       make(map[string]*models.UserProfile),
		emails:      make(map[string]string),
		circles:     make(map[string]*models.Circle),
		posts:       make(map[string][]*models.Post),
		unread:      make(map[string]map[string]int),
		prompts:     make(map[string]models.EngagementPrompt),
		adminEmails: make(map[string]bool),
	}
	if s.gateway == nil {
		s.gateway = DisabledGateway{}
	}
	if s.broadcaster == nil {
		s.broadcaster = nopBroadcaster{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, email := range cfg.AdminEmails {
		if email = normalizeEmail(email); email != "" {
			s.adminEmails[email] = true
		}
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	companion := companionProfile(s.now())
	s.users[companion.User_ID] = &companion
	return s
}

// InitSanctuary builds the process-wide Sanctuary.
func InitSanctuary(cfg SanctuaryConfig, deps SanctuaryDeps) *Sanctuary {
	sanctuary = NewSanctuary(cfg, deps)
	return sanctuary
}

func GetSanctuary() *Sanctuary {
	return sanctuary
}

// SetSanctuary swaps the process-wide Sanctuary and returns the previous one.
func SetSanctuary(s *Sanctuary) *Sanctuary {
	previous := sanctuary
	sanctuary = s
	return previous
}

// Wait blocks until every background task (companion replies, summaries,
// notifications, journal writes) has finished.
func (s *Sanctuary) Wait() {
	s.wg.Wait()
}

// Close cancels pending background tasks and waits for them to return.
func (s *Sanctuary) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Sanctuary) spawn(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// publishLocked must be called with s.mu held so subscribers receive events
// in the order the mutations were applied. Broadcasters must not block.
func (s *Sanctuary) publishLocked(event Event) {
	if event.At.IsZero() {
		event.At = s.now()
	}
	s.broadcaster.Publish(event)
}

func (s *Sanctuary) record(circleID string, postID *string, userID, action string) {
	if s.journal == nil {
		return
	}
	activity := models.CircleActivity{
		Circle_ID:   circleID,
		Post_ID:     postID,
		User_ID:     userID,
		Action_Type: action,
	}
	s.spawn(func(ctx context.Context) {
		if err := s.journal.Record(ctx, activity); err != nil {
			initializers.Log.Warnw("failed to record circle activity", "circleId", circleID, "action", action, "error", err)
		}
	})
}

func companionProfile(now time.Time) models.UserProfile {
	photo := models.CompanionPhoto
	return models.UserProfile{
		User_ID:        models.CompanionUserID,
		Email:          "siilah@siilah.app",
		Name:           models.CompanionName,
		Photo_URL:      &photo,
		Faith_Stage:    models.FaithStageEstablished,
		Status:         "active",
		Current_Status: models.UserStatusOnline,
		Privacy_Settings: models.PrivacySettings{
			Profile_Visibility: models.PrivacyPrivate,
			Posts_Visibility:   models.PrivacyPrivate,
		},
		Datetime_Create: now,
		Datetime_Update: now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SeedCorpus installs the discovery corpus and registers its people as users.
func (s *Sanctuary) SeedCorpus(corpus models.DiscoveryCorpus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.corpus = models.DiscoveryCorpus{
		People:  append([]models.UserProfile(nil), corpus.People...),
		Circles: append([]models.PublicCircle(nil), corpus.Circles...),
		Themes:  append([]string(nil), corpus.Themes...),
	}
	for i := range s.corpus.People {
		person := s.corpus.People[i]
		if person.User_ID == "" {
			person.User_ID = uuid.NewString()
		}
		if person.Status == "" {
			person.Status = "active"
		}
		person.Datetime_Create = now
		person.Datetime_Update = now
		s.users[person.User_ID] = &person
		if person.Email != "" {
			s.emails[normalizeEmail(person.Email)] = person.User_ID
		}
		s.corpus.People[i] = person
	}
}

// RegisterUser stores a completed onboarding profile. passwordHash must already be hashed.
func (s *Sanctuary) RegisterUser(onboard models.UserProfileOnboard, passwordHash string) (models.UserProfile, error) {
	email := normalizeEmail(onboard.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[email]; exists {
		return models.UserProfile{}, ErrEmailTaken
	}

	now := s.now()
	user := models.UserProfile{
		User_ID:                uuid.NewString(),
		Email:                  email,
		Password:               passwordHash,
		Name:                   strings.TrimSpace(onboard.Name),
		Photo_URL:              onboard.Photo_URL,
		Location:               onboard.Location,
		Faith_Stage:            onboard.Faith_Stage,
		Seeking_Goals:          nonNil(onboard.Seeking_Goals),
		Sharing_Comfort:        onboard.Sharing_Comfort,
		Activity_Preference:    onboard.Activity_Preference,
		Prayer_Focus:           nonNil(onboard.Prayer_Focus),
		Christian_Tradition:    onboard.Christian_Tradition,
		Life_Stages:            nonNil(onboard.Life_Stages),
		Timezone_Preference:    onboard.Timezone_Preference,
		Personality_Indicators: nonNil(onboard.Personality_Indicators),
		Status:                 "active",
		Current_Status:         onboard.Current_Status,
		Privacy_Settings: models.PrivacySettings{
			Profile_Visibility: models.PrivacyPublic,
			Posts_Visibility:   models.PrivacyFriendsOnly,
		},
		Notification_Settings: models.NotificationSettings{
			Push_Enabled:    true,
			Prayer_Requests: true,
			Circle_Activity: true,
			Messages:        true,
		},
		Admin:           s.adminEmails[email],
		Datetime_Create: now,
		Datetime_Update: now,
	}
	if user.Current_Status == "" {
		user.Current_Status = models.UserStatusOnline
	}
	if user.Activity_Preference == "" {
		user.Activity_Preference = "weekly"
	}
	if onboard.Privacy_Settings != nil {
		user.Privacy_Settings = *onboard.Privacy_Settings
	}
	if onboard.Notification_Settings != nil {
		user.Notification_Settings = *onboard.Notification_Settings
	}

	s.users[user.User_ID] = &user
	s.emails[email] = user.User_ID
	return user, nil
}

func (s *Sanctuary) GetUser(userID string) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.UserProfile{}, ErrUserNotFound
	}
	return *user, nil
}

func (s *Sanctuary) FindUserByEmail(email string) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return models.UserProfile{}, ErrUserNotFound
	}
	return *s.users[userID], nil
}

// UpdateUserSettings applies the non-nil fields of update to the user's profile.
func (s *Sanctuary) UpdateUserSettings(userID string, update models.UserProfileUpdate) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[userID]
	if !ok {
		return models.UserProfile{}, ErrUserNotFound
	}

	user := *current
	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Photo_URL != nil {
		user.Photo_URL = update.Photo_URL
	}
	if update.Location != nil {
		user.Location = update.Location
	}
	if update.Faith_Stage != nil {
		user.Faith_Stage = *update.Faith_Stage
	}
	if update.Prayer_Focus != nil {
		user.Prayer_Focus = update.Prayer_Focus
	}
	if update.Life_Stages != nil {
		user.Life_Stages = update.Life_Stages
	}
	if update.Activity_Preference != nil {
		user.Activity_Preference = *update.Activity_Preference
	}
	if update.Timezone_Preference != nil {
		user.Timezone_Preference = *update.Timezone_Preference
	}
	if update.Current_Status != nil {
		user.Current_Status = *update.Current_Status
	}
	if update.Privacy_Settings != nil {
		user.Privacy_Settings = *update.Privacy_Settings
	}
	if update.Notification_Settings != nil {
		user.Notification_Settings = *update.Notification_Settings
	}
	user.Datetime_Update = s.now()

	s.users[userID] = &user
	return user, nil
}

// DiscoveryCandidates returns the seeded people a user can be matched with.
func (s *Sanctuary) DiscoveryCandidates(excludeUserID string) []models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]models.UserProfile, 0, len(s.corpus.People))
	for _, person := range s.corpus.People {
		if person.User_ID == excludeUserID {
			continue
		}
		candidates = append(candidates, person)
	}
	return candidates
}

func (s *Sanctuary) Corpus() models.DiscoveryCorpus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.DiscoveryCorpus{
		People:  append([]models.UserProfile(nil), s.corpus.People...),
		Circles: append([]models.PublicCircle(nil), s.corpus.Circles...),
		Themes:  append([]string(nil), s.corpus.Themes...),
	}
}

// FilterCorpus does the plain substring search the discover tab runs before
// asking the gateway: people by name or faith stage, circles by name or theme.
func (s *Sanctuary) FilterCorpus(term string) models.DiscoveryCorpus {
	term = strings.ToLower(strings.TrimSpace(term))
	corpus := s.Corpus()

	result := models.DiscoveryCorpus{
		People:  []models.UserProfile{},
		Circles: []models.PublicCircle{},
		Themes:  []string{},
	}
	for _, person := range corpus.People {
		if strings.Contains(strings.ToLower(person.Name), term) || strings.Contains(strings.ToLower(person.Faith_Stage), term) {
			result.People = append(result.People, person)
		}
	}
	for _, circle := range corpus.Circles {
		if strings.Contains(strings.ToLower(circle.Name), term) || strings.Contains(strings.ToLower(circle.Theme), term) {
			result.Circles = append(result.Circles, circle)
		}
	}
	for _, theme := range corpus.Themes {
		if strings.Contains(strings.ToLower(theme), term) {
			result.Themes = append(result.Themes, theme)
		}
	}
	return result
}

// ListCircles returns the actor's circles, most recently active first.
func (s *Sanctuary) ListCircles(actorID string) []models.Circle {
	s.mu.Lock()
	defer s.mu.Unlock()

	circles := []models.Circle{}
	for _, circle := range s.circles {
		if circle.HasMember(actorID) {
			circles = append(circles, s.viewCircleLocked(circle, actorID))
		}
	}
	sort.SliceStable(circles, func(i, j int) bool {
		return circles[i].Last_Activity_At.After(circles[j].Last_Activity_At)
	})
	return circles
}

func (s *Sanctuary) GetCircle(actorID, circleID string) (models.Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	circle, err := s.memberCircleLocked(actorID, circleID)
	if err != nil {
		return models.Circle{}, err
	}
	return s.viewCircleLocked(circle, actorID), nil
}

// ListPosts returns the circle's posts newest first. The returned posts must not be modified.
func (s *Sanctuary) ListPosts(actorID, circleID string) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.memberCircleLocked(actorID, circleID); err != nil {
		return nil, err
	}
	return append([]*models.Post{}, s.posts[circleID]...), nil
}

func (s *Sanctuary) GetPost(actorID, circleID, postID string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.memberCircleLocked(actorID, circleID); err != nil {
		return nil, err
	}
	_, post, err := s.findPostLocked(circleID, postID)
	return post, err
}

// CurrentPrompt returns the last engagement prompt generated for the circle.
func (s *Sanctuary) CurrentPrompt(actorID, circleID string) (models.EngagementPrompt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.memberCircleLocked(actorID, circleID); err != nil {
		return models.EngagementPrompt{}, false, err
	}
	prompt, ok := s.prompts[circleID]
	return prompt, ok, nil
}

// PrayingNowCount is the number of active praying-now entries across all posts.
func (s *Sanctuary) PrayingNowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prayingNow
}

func (s *Sanctuary) memberCircleLocked(actorID, circleID string) (*models.Circle, error) {
	circle, ok := s.circles[circleID]
	if !ok {
		return nil, ErrCircleNotFound
	}
	if !circle.HasMember(actorID) {
		return nil, ErrNotCircleMember
	}
	return circle, nil
}

func (s *Sanctuary) findPostLocked(circleID, postID string) (int, *models.Post, error) {
	for i, post := range s.posts[circleID] {
		if post.Post_ID == postID {
			return i, post, nil
		}
	}
	return -1, nil, ErrPostNotFound
}

// replacePostLocked swaps in next at idx, copying the slice so earlier snapshots stay intact.
func (s *Sanctuary) replacePostLocked(circleID string, idx int, next *models.Post) {
	current := s.posts[circleID]
	updated := make([]*models.Post, len(current))
	copy(updated, current)
	updated[idx] = next
	s.posts[circleID] = updated
}

func (s *Sanctuary) prependPostLocked(circleID string, post *models.Post) {
	current := s.posts[circleID]
	updated := make([]*models.Post, 0, len(current)+1)
	updated = append(updated, post)
	updated = append(updated, current...)
	s.posts[circleID] = updated
}

func (s *Sanctuary) touchCircleLocked(circleID string, at time.Time) *models.Circle {
	next := s.circles[circleID].Clone()
	next.Last_Activity_At = at
	s.circles[circleID] = next
	return next
}

// bumpUnreadLocked marks a new post unread for every member except its author.
func (s *Sanctuary) bumpUnreadLocked(circle *models.Circle, authorID string) {
	counts, ok := s.unread[circle.Circle_ID]
	if !ok {
		counts = make(map[string]int)
		s.unread[circle.Circle_ID] = counts
	}
	for _, member := range circle.Members {
		if member.User_ID != authorID {
			counts[member.User_ID]++
		}
	}
}

func (s *Sanctuary) viewCircleLocked(circle *models.Circle, viewerID string) models.Circle {
	view := *circle.Clone()
	view.Unread_Count = s.unread[circle.Circle_ID][viewerID]
	return view
}

func (s *Sanctuary) memberProfilesLocked(circle *models.Circle) []models.UserProfile {
	profiles := make([]models.UserProfile, 0, len(circle.Members))
	for _, member := range circle.Members {
		if user, ok := s.users[member.User_ID]; ok {
			profiles = append(profiles, *user)
		}
	}
	return profiles
}

func (s *Sanctuary) addCircleLocked(circle *models.Circle) {
	s.circles[circle.Circle_ID] = circle
	s.posts[circle.Circle_ID] = []*models.Post{}
	s.unread[circle.Circle_ID] = make(map[string]int)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
