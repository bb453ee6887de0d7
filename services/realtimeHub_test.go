package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Siilah/models"
)

func TestRealtimeHub_SubscribePublish(t *testing.T) {
	hub := NewRealtimeHub()
	a := hub.Subscribe("circle-1")
	b := hub.Subscribe("circle-2")

	hub.Publish(Event{Type: EventPostCreated, CircleID: "circle-1"})

	select {
	case event := <-a.Events():
		assert.Equal(t, EventPostCreated, event.Type)
	default:
		t.Fatal("expected an event for circle-1")
	}
	select {
	case <-b.Events():
		t.Fatal("circle-2 must not receive circle-1 events")
	default:
	}

	hub.Unsubscribe(a)
	hub.Unsubscribe(a)
	assert.Equal(t, 0, hub.SubscriberCount("circle-1"))
	_, open := <-a.Events()
	assert.False(t, open)
}

func TestRealtimeHub_DropsSlowSubscribers(t *testing.T) {
	hub := NewRealtimeHub()
	slow := hub.Subscribe("circle-1")

	for i := 0; i < liveSendBuffer+1; i++ {
		hub.Publish(Event{Type: EventPostUpdated, CircleID: "circle-1"})
	}
	assert.Equal(t, 0, hub.SubscriberCount("circle-1"))

	received := 0
	for range slow.Events() {
		received++
	}
	assert.Equal(t, liveSendBuffer, received)
}

func TestRealtimeHub_Close(t *testing.T) {
	hub := NewRealtimeHub()
	sub := hub.Subscribe("circle-1")
	hub.Close()

	_, open := <-sub.Events()
	assert.False(t, open)

	late := hub.Subscribe("circle-1")
	_, open = <-late.Events()
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("circle-1"))
}

func TestRealtimeHub_Serve(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewRealtimeHub()
	upgrader := websocket.Upgrader{}
	var served sync.WaitGroup
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		served.Add(1)
		defer served.Done()
		hub.Serve(conn, "circle-1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.SubscriberCount("circle-1") == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(Event{
		Type:     EventPostCreated,
		CircleID: "circle-1",
		Post:     &models.Post{Post_ID: "post-1", Content_Text: "Please pray for my exam"},
	})

	var event Event
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, client.ReadJSON(&event))
	assert.Equal(t, EventPostCreated, event.Type)
	require.NotNil(t, event.Post)
	assert.Equal(t, "post-1", event.Post.Post_ID)

	client.Close()
	require.Eventually(t, func() bool { return hub.SubscriberCount("circle-1") == 0 }, 2*time.Second, 5*time.Millisecond)
	served.Wait()
}
