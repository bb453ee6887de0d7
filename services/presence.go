package services

import (
	"time"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

type PruneResult struct {
	Removed int
	Changed []*models.Post
}

// PrunePrayingNow drops praying-now entries older than the presence TTL.
// Only posts whose list shrank are replaced; everything else keeps its identity.
// Entries whose start time cannot be parsed are kept.
func (s *Sanctuary) PrunePrayingNow(now time.Time) PruneResult {
	var result PruneResult
	ttl := s.cfg.PresenceTTL

	var expired []models.CircleActivity

	s.mu.Lock()
	for circleID, posts := range s.posts {
		var updated []*models.Post
		for idx, post := range posts {
			if len(post.Praying_Now) == 0 {
				continue
			}
			kept := make([]models.PrayingNow, 0, len(post.Praying_Now))
			for _, entry := range post.Praying_Now {
				if isExpired(entry, now, ttl) {
					postID := post.Post_ID
					expired = append(expired, models.CircleActivity{Circle_ID: circleID, Post_ID: &postID, User_ID: entry.User_ID})
					continue
				}
				kept = append(kept, entry)
			}
			if len(kept) == len(post.Praying_Now) {
				continue
			}

			if updated == nil {
				updated = make([]*models.Post, len(posts))
				copy(updated, posts)
			}
			next := post.Clone()
			next.Praying_Now = kept
			updated[idx] = next

			result.Removed += len(post.Praying_Now) - len(kept)
			result.Changed = append(result.Changed, next)
		}
		if updated != nil {
			s.posts[circleID] = updated
		}
	}
	s.prayingNow -= result.Removed
	setPrayingNowGauge(s.prayingNow)
	for _, post := range result.Changed {
		s.publishLocked(Event{Type: EventPresencePruned, CircleID: post.Circle_ID, Post: post, At: now})
	}
	s.mu.Unlock()

	observePrune(result.Removed)
	for _, activity := range expired {
		s.record(activity.Circle_ID, activity.Post_ID, activity.User_ID, models.ActivityPrayingExpired)
	}
	if result.Removed > 0 {
		initializers.Log.Debugw("pruned praying-now entries", "removed", result.Removed, "posts", len(result.Changed))
	}
	return result
}

func isExpired(entry models.PrayingNow, now time.Time, ttl time.Duration) bool {
	started, err := time.Parse(time.RFC3339Nano, entry.Started_At)
	if err != nil {
		return false
	}
	return now.Sub(started) >= ttl
}
