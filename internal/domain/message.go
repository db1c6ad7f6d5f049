package domain

// RoomType distinguishes 1:1 chats from group rooms.
type RoomType string

const (
	RoomTypeDirect RoomType = "direct"
	RoomTypeGroup  RoomType = "group"
)

// Message is a message fetched from or returned by the cloud messaging API.
type Message struct {
	ID              string       `json:"id,omitempty"`
	RoomID          string       `json:"roomId,omitempty"`
	RoomType        RoomType     `json:"roomType,omitempty"`
	ToPersonID      string       `json:"toPersonId,omitempty"`
	ToPersonEmail   string       `json:"toPersonEmail,omitempty"`
	Text            string       `json:"text,omitempty"`
	Markdown        string       `json:"markdown,omitempty"`
	HTML            string       `json:"html,omitempty"`
	Files           []string     `json:"files,omitempty"`
	PersonID        string       `json:"personId,omitempty"`
	PersonEmail     string       `json:"personEmail,omitempty"`
	MentionedPeople []string     `json:"mentionedPeople,omitempty"`
	MentionedGroups []string     `json:"mentionedGroups,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	Created         string       `json:"created,omitempty"`
	Updated         string       `json:"updated,omitempty"`
	ParentID        string       `json:"parentId,omitempty"`
}

// MessageOut is the payload for posting a new message. Exactly one of
// RoomID, ToPersonID, or ToPersonEmail selects the destination.
type MessageOut struct {
	ParentID      string       `json:"parentId,omitempty"`
	RoomID        string       `json:"roomId,omitempty"`
	ToPersonID    string       `json:"toPersonId,omitempty"`
	ToPersonEmail string       `json:"toPersonEmail,omitempty"`
	Text          string       `json:"text,omitempty"`
	Markdown      string       `json:"markdown,omitempty"`
	Files         []string     `json:"files,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

// Reply builds a MessageOut addressed back at the room the message came from.
func (m Message) Reply(text string) *MessageOut {
	return &MessageOut{RoomID: m.RoomID, Text: text}
}

// Attachment carries rich content on a message. Only one card per message is
// supported by the cloud.
type Attachment struct {
	ContentType string       `json:"contentType"`
	Content     AdaptiveCard `json:"content"`
}

// Room is a space the bot can post into.
type Room struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	RoomType     RoomType `json:"type"`
	IsLocked     bool     `json:"isLocked"`
	TeamID       string   `json:"teamId,omitempty"`
	LastActivity string   `json:"lastActivity"`
	CreatorID    string   `json:"creatorId"`
	Created      string   `json:"created"`
}

// Person holds the directory record for a user or bot account.
type Person struct {
	ID           string   `json:"id"`
	Emails       []string `json:"emails"`
	DisplayName  string   `json:"displayName"`
	NickName     string   `json:"nickName"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Avatar       string   `json:"avatar"`
	OrgID        string   `json:"orgId"`
	Created      string   `json:"created"`
	LastActivity string   `json:"lastActivity"`
	Status       string   `json:"status"`
	PersonType   string   `json:"type"` // "person", "bot", or "appuser"
}

// AttachmentAction is the record of a user interacting with a card.
type AttachmentAction struct {
	ID         string         `json:"id"`
	ActionType string         `json:"type,omitempty"`
	MessageID  string         `json:"messageId,omitempty"`
	Inputs     map[string]any `json:"inputs,omitempty"`
	PersonID   string         `json:"personId,omitempty"`
	RoomID     string         `json:"roomId,omitempty"`
	Created    string         `json:"created,omitempty"`
}
