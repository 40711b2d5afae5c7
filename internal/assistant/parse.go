package assistant

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/frahmantamala/crm-assistant/internal/core/action"
	"github.com/frahmantamala/crm-assistant/internal/responder"
	"github.com/kaptinlin/jsonrepair"
)

var errEmptyCompletion = errors.New("empty completion")

type completion struct {
	Message string          `json:"message"`
	Actions []action.Action `json:"actions"`
}

// cleanMarkdownWrapper strips a ```json fence some models put around the object.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// parseCompletion turns a model answer into a reply. Prose answers, and JSON
// that stays broken after repair, are kept verbatim as the message with no
// actions. A decodable object must carry a non-empty message.
func parseCompletion(content string) (responder.Reply, error) {
	cleaned := cleanMarkdownWrapper(content)
	if cleaned == "" {
		return responder.Reply{}, errEmptyCompletion
	}
	if !strings.HasPrefix(cleaned, "{") {
		return responder.Reply{Message: cleaned, Actions: []action.Action{}}, nil
	}

	var c completion
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		c = completion{}
		if repairErr != nil || json.Unmarshal([]byte(repaired), &c) != nil {
			return responder.Reply{Message: cleaned, Actions: []action.Action{}}, nil
		}
	}
	if strings.TrimSpace(c.Message) == "" {
		return responder.Reply{}, errEmptyCompletion
	}

	actions := make([]action.Action, 0, len(c.Actions))
	for _, a := range c.Actions {
		if !a.Type.Known() {
			continue
		}
		actions = append(actions, a)
		if len(actions) == responder.MaxActions {
			break
		}
	}
	return responder.Reply{Message: strings.TrimSpace(c.Message), Actions: actions}, nil
}
