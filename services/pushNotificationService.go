package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

const expoPushEndpoint = "https://exp.host/--/api/v2/push/send"

// fcmSender is the part of the FCM messaging client used for delivery.
type fcmSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type PushNotificationService struct {
	fcmClient    fcmSender
	httpClient   *http.Client
	expoEndpoint string
}

type NotificationPayload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Badge    string            `json:"badge,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

var _ PushSender = (*PushNotificationService)(nil)

// InitPushNotificationService connects to FCM. When Firebase cannot be
// initialized the service still delivers to Expo tokens.
func InitPushNotificationService(ctx context.Context, serviceAccountPath string) *PushNotificationService {
	service := &PushNotificationService{
		httpClient:   http.DefaultClient,
		expoEndpoint: expoPushEndpoint,
	}

	var app *firebase.App
	var err error
	if serviceAccountPath != "" {
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
		if err != nil {
			initializers.Log.Warnw("failed to initialize Firebase app with service account", "error", err)
			return service
		}
		initializers.Log.Info("Firebase initialized with service account file")
	} else {
		app, err = firebase.NewApp(ctx, nil)
		if err != nil {
			initializers.Log.Warnw("failed to initialize Firebase app with ADC", "error", err)
			return service
		}
		initializers.Log.Info("Firebase initialized with Application Default Credentials")
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		initializers.Log.Warnw("failed to get Firebase messaging client", "error", err)
		return service
	}
	service.fcmClient = client

	initializers.Log.Info("push notification service initialized with FCM")
	return service
}

// SendToTokens delivers payload to every token, continuing past individual failures.
func (s *PushNotificationService) SendToTokens(ctx context.Context, tokens []models.PushToken, payload NotificationPayload) error {
	if len(tokens) == 0 {
		return fmt.Errorf("no tokens provided")
	}

	failed := 0
	for _, token := range tokens {
		if err := s.sendToToken(ctx, token, payload); err != nil {
			failed++
			initializers.Log.Warnw("failed to send notification to token", "platform", token.Platform, "error", err)
		}
	}
	if failed == len(tokens) {
		return fmt.Errorf("failed to send notification to all %d tokens", failed)
	}
	return nil
}

func (s *PushNotificationService) sendToToken(ctx context.Context, pushToken models.PushToken, payload NotificationPayload) error {
	// Expo Go development builds register Expo tokens instead of FCM ones.
	if strings.HasPrefix(pushToken.Push_Token, "ExponentPushToken[") {
		return s.sendExpoNotification(ctx, pushToken, payload)
	}

	if s.fcmClient == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	response, err := s.fcmClient.Send(ctx, buildFCMMessage(pushToken, payload))
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	initializers.Log.Debugw("sent FCM notification", "messageId", response)
	return nil
}

func buildFCMMessage(pushToken models.PushToken, payload NotificationPayload) *messaging.Message {
	message := &messaging.Message{
		Token: pushToken.Push_Token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	switch pushToken.Platform {
	case "ios":
		message.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: payload.Title,
						Body:  payload.Body,
					},
					Sound: payload.Sound,
				},
			},
		}
		if payload.Badge != "" {
			if badgeNum, err := strconv.Atoi(payload.Badge); err == nil {
				message.APNS.Payload.Aps.Badge = &badgeNum
			}
		}
		if payload.Priority == "high" {
			message.APNS.Headers = map[string]string{
				"apns-priority": "10",
			}
		}
	case "android":
		message.Android = &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Title: payload.Title,
				Body:  payload.Body,
				Sound: payload.Sound,
			},
			Priority: "normal",
		}
		if payload.Priority == "high" {
			message.Android.Priority = "high"
		}
	}
	return message
}

func (s *PushNotificationService) sendExpoNotification(ctx context.Context, pushToken models.PushToken, payload NotificationPayload) error {
	expoMessage := map[string]interface{}{
		"to":    pushToken.Push_Token,
		"title": payload.Title,
		"body":  payload.Body,
		"data":  payload.Data,
	}
	if payload.Sound != "" {
		expoMessage["sound"] = payload.Sound
	}
	if payload.Priority == "high" {
		expoMessage["priority"] = "high"
	}

	jsonBody, err := json.Marshal(expoMessage)
	if err != nil {
		return fmt.Errorf("failed to marshal Expo message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.expoEndpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Expo notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Expo push API returned status %d: %s", resp.StatusCode, string(responseBody))
	}
	return nil
}
