package domain

// WebhookEvent is the envelope the cloud POSTs to a registered webhook.
// Data carries only the message identifier; the runtime resolves the full
// text through the REST collaborator before parsing.
type WebhookEvent struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	TargetURL string           `json:"targetUrl"`
	Resource  string           `json:"resource"`
	Event     string           `json:"event"`
	Created   string           `json:"created"`
	ActorID   string           `json:"actorId"`
	Data      MessageEventData `json:"data"`
}

// MessageEventData identifies the message a webhook event refers to.
type MessageEventData struct {
	ID              string   `json:"id"`
	RoomID          string   `json:"roomId"`
	RoomType        string   `json:"roomType"`
	PersonID        string   `json:"personId"`
	PersonEmail     string   `json:"personEmail"`
	MentionedPeople []string `json:"mentionedPeople"`
	Created         string   `json:"created"`
}

// Realtime event types and activity verbs observed on the transport.
const (
	EventTypeConversationActivity = "conversation.activity"

	ActivityVerbPost       = "post"
	ActivityVerbCardAction = "cardAction"
)

// RealtimeEvent is the decoded payload of a Text frame delivered over the
// realtime transport.
type RealtimeEvent struct {
	ID   string            `json:"id"`
	Data RealtimeEventData `json:"data"`
}

// RealtimeEventData discriminates the event and names the activity.
type RealtimeEventData struct {
	EventType string   `json:"eventType"`
	Activity  Activity `json:"activity"`
}

// Activity is the conversation activity attached to a realtime event. For
// "post" verbs the ID resolves to a message through the REST collaborator.
type Activity struct {
	ID   string `json:"id"`
	Verb string `json:"verb"`
}
