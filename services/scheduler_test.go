package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStartScheduler_Validation(t *testing.T) {
	s := NewSanctuary(DefaultSanctuaryConfig(), SanctuaryDeps{})
	defer s.Close()

	tests := []struct {
		name       string
		interval   time.Duration
		weeklySpec string
	}{
		{name: "zero interval", interval: 0, weeklySpec: ""},
		{name: "bad weekly spec", interval: time.Second, weeklySpec: "every sunday please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sch, err := StartScheduler(s, tt.interval, tt.weeklySpec)
			assert.Error(t, err)
			assert.Nil(t, sch)
		})
	}
}

func TestStartScheduler_SweepsPresence(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := newTestEnv(t)
	post := env.post(t, env.grace.User_ID, "Please pray for my exam")
	_, err := env.s.TogglePrayer("seed-sarah", env.circle.Circle_ID, post.Post_ID, nil)
	require.NoError(t, err)
	env.clock.Advance(10 * time.Minute)

	sch, err := StartScheduler(env.s, time.Second, "0 18 * * SUN")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return env.s.PrayingNowCount() == 0 }, 3*time.Second, 20*time.Millisecond)
	sch.Stop()
	env.s.Close()

	current, err := env.s.GetPost(env.grace.User_ID, env.circle.Circle_ID, post.Post_ID)
	require.NoError(t, err)
	assert.Empty(t, current.Praying_Now)
}
