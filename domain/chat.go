package domain

import "time"

// Content is either a text body or a media envelope with an optional caption.
type Content struct {
	Text    string
	Media   *MediaEnvelope
	Caption string
}

func TextContent(text string) Content { return Content{Text: text} }

func MediaContent(media MediaEnvelope, caption string) Content {
	return Content{Media: &media, Caption: caption}
}

func (c Content) IsMedia() bool { return c.Media != nil }

type SentMessage struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Body      string    `json:"body,omitempty"`
	HasMedia  bool      `json:"hasMedia"`
	Timestamp time.Time `json:"timestamp"`
}

type Chat struct {
	ID      AddressableID
	Name    string
	IsGroup bool
}

// IncomingMessage is a message received by the session.
type IncomingMessage struct {
	ID        string
	From      AddressableID
	Chat      AddressableID
	Body      string
	FromMe    bool
	Timestamp time.Time
}
