package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCommandDispatched = "command.dispatched"
	EventTypePermissionDenied  = "permission.denied"
)

type CommandDispatchedEvent struct {
	BaseEvent
	UserID     int64             `json:"user_id"`
	SessionID  string            `json:"session_id"`
	Command    string            `json:"command"`
	Category   string            `json:"category"`
	ActionType string            `json:"action_type"`
	Path       string            `json:"path,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	Transcript string            `json:"transcript"`
}

func NewCommandDispatchedEvent(userID int64, sessionID, command, category, actionType, path string, params map[string]string, transcript string) *CommandDispatchedEvent {
	return &CommandDispatchedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCommandDispatched,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":     userID,
				"session_id":  sessionID,
				"command":     command,
				"category":    category,
				"action_type": actionType,
				"path":        path,
				"transcript":  transcript,
			},
		},
		UserID:     userID,
		SessionID:  sessionID,
		Command:    command,
		Category:   category,
		ActionType: actionType,
		Path:       path,
		Params:     params,
		Transcript: transcript,
	}
}

type PermissionDeniedEvent struct {
	BaseEvent
	UserID     int64  `json:"user_id"`
	SessionID  string `json:"session_id"`
	Command    string `json:"command"`
	Reason     string `json:"reason"`
	Transcript string `json:"transcript"`
}

func NewPermissionDeniedEvent(userID int64, sessionID, command, reason, transcript string) *PermissionDeniedEvent {
	return &PermissionDeniedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePermissionDenied,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"session_id": sessionID,
				"command":    command,
				"reason":     reason,
				"transcript": transcript,
			},
		},
		UserID:     userID,
		SessionID:  sessionID,
		Command:    command,
		Reason:     reason,
		Transcript: transcript,
	}
}
