package initializers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfig(t *testing.T) {
	t.Setenv("SECRET", "config-test-secret")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PRESENCE_TTL", "")
		t.Setenv("PRESENCE_SWEEP_INTERVAL", "")
		t.Setenv("COMPANION_CHAT_DELAY", "")
		t.Setenv("COMPANION_REFLECTION_DELAY", "")
		t.Setenv("PORT", "")

		cfg, err := DecodeConfig()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.PresenceTTL)
		assert.Equal(t, 10*time.Second, cfg.PresenceSweepInterval)
		assert.Equal(t, 1200*time.Millisecond, cfg.CompanionChatDelay)
		assert.Equal(t, 1500*time.Millisecond, cfg.CompanionReflectionDelay)
		assert.Equal(t, "8080", cfg.Port)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PRESENCE_TTL", "2m")
		t.Setenv("PORT", "9090")
		t.Setenv("GEMINI_API_KEY", "key")

		cfg, err := DecodeConfig()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, cfg.PresenceTTL)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "key", cfg.GeminiAPIKey)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		t.Setenv("PRESENCE_TTL", "0s")

		_, err := DecodeConfig()
		assert.Error(t, err)
	})

	t.Run("rejects missing secret", func(t *testing.T) {
		t.Setenv("SECRET", "")

		_, err := DecodeConfig()
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("rejects blank secret", func(t *testing.T) {
		t.Setenv("SECRET", "   ")

		_, err := DecodeConfig()
		assert.ErrorIs(t, err, ErrMissingSecret)
	})
}

func TestJWTSecret(t *testing.T) {
	previous := Config
	t.Cleanup(func() { Config = previous })
	Config = AppConfig{}

	t.Setenv("SECRET", "")
	_, err := JWTSecret()
	assert.ErrorIs(t, err, ErrMissingSecret)

	t.Setenv("SECRET", "from-env")
	secret, err := JWTSecret()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-env"), secret)

	Config.Secret = "from-config"
	secret, err = JWTSecret()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-config"), secret)
}
