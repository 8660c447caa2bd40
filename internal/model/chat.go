package model

import "encoding/json"

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMode selects the system instruction used for a chat exchange.
type ChatMode string

const (
	ChatModeQA           ChatMode = "qa"
	ChatModeSummary      ChatMode = "summary"
	ChatModeDeepAnalysis ChatMode = "deep_analysis"
)

// ChatTurn is one message in a chat session.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSession is the explicit, caller-owned conversation state for one media
// item. History is append-only during a session.
type ChatSession struct {
	MediaItemID int64      `json:"media_item_id"`
	Turns       []ChatTurn `json:"turns"`
}

// Append adds a turn to the session history.
func (s *ChatSession) Append(role, content string) {
	s.Turns = append(s.Turns, ChatTurn{Role: role, Content: content})
}

// Marshal serializes the session history for persistence.
func (s *ChatSession) Marshal() ([]byte, error) {
	return json.Marshal(s.Turns)
}

// UnmarshalSession restores a session from its persisted history blob.
func UnmarshalSession(mediaItemID int64, data []byte) (*ChatSession, error) {
	session := &ChatSession{MediaItemID: mediaItemID}
	if len(data) == 0 {
		return session, nil
	}
	if err := json.Unmarshal(data, &session.Turns); err != nil {
		return nil, err
	}
	return session, nil
}
