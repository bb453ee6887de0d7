package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siilah/models"
)

type fakeFCM struct {
	messages []*messaging.Message
	err      error
}

func (f *fakeFCM) Send(_ context.Context, message *messaging.Message) (string, error) {
	f.messages = append(f.messages, message)
	if f.err != nil {
		return "", f.err
	}
	return "projects/siilah/messages/1", nil
}

func TestBuildFCMMessage(t *testing.T) {
	payload := NotificationPayload{Title: "Waiting Season Triad", Body: "Sarah is praying for you", Sound: "default", Badge: "3", Priority: "high"}

	ios := buildFCMMessage(models.PushToken{Push_Token: "ios-token", Platform: "ios"}, payload)
	require.NotNil(t, ios.APNS)
	assert.Equal(t, "ios-token", ios.Token)
	assert.Equal(t, "10", ios.APNS.Headers["apns-priority"])
	require.NotNil(t, ios.APNS.Payload.Aps.Badge)
	assert.Equal(t, 3, *ios.APNS.Payload.Aps.Badge)
	assert.Nil(t, ios.Android)

	android := buildFCMMessage(models.PushToken{Push_Token: "android-token", Platform: "android"}, payload)
	require.NotNil(t, android.Android)
	assert.Equal(t, "high", android.Android.Priority)
	assert.Nil(t, android.APNS)
}

func TestSendToTokens(t *testing.T) {
	var expoBodies []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		expoBodies = append(expoBodies, body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fcm := &fakeFCM{}
	service := &PushNotificationService{fcmClient: fcm, httpClient: srv.Client(), expoEndpoint: srv.URL}
	tokens := []models.PushToken{
		{Push_Token: "ExponentPushToken[abc]", Platform: "ios"},
		{Push_Token: "fcm-token", Platform: "android"},
	}

	err := service.SendToTokens(context.Background(), tokens, NotificationPayload{Title: "t", Body: "b", Priority: "high"})
	require.NoError(t, err)

	require.Len(t, expoBodies, 1)
	assert.Equal(t, "ExponentPushToken[abc]", expoBodies[0]["to"])
	assert.Equal(t, "high", expoBodies[0]["priority"])
	require.Len(t, fcm.messages, 1)
	assert.Equal(t, "fcm-token", fcm.messages[0].Token)
}

func TestSendToTokens_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusBadRequest)
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		fcm     fcmSender
		tokens  []models.PushToken
		wantErr bool
	}{
		{name: "no tokens", tokens: nil, wantErr: true},
		{
			name:    "every token fails",
			fcm:     &fakeFCM{err: errors.New("unregistered")},
			tokens:  []models.PushToken{{Push_Token: "fcm-token"}, {Push_Token: "ExponentPushToken[x]"}},
			wantErr: true,
		},
		{
			name:    "fcm client missing",
			tokens:  []models.PushToken{{Push_Token: "fcm-token"}},
			wantErr: true,
		},
		{
			name:    "partial failure succeeds",
			fcm:     &fakeFCM{},
			tokens:  []models.PushToken{{Push_Token: "fcm-token"}, {Push_Token: "ExponentPushToken[x]"}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &PushNotificationService{fcmClient: tt.fcm, httpClient: srv.Client(), expoEndpoint: srv.URL}
			err := service.SendToTokens(context.Background(), tt.tokens, NotificationPayload{Title: "t"})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
