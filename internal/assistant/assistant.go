package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	"github.com/frahmantamala/crm-assistant/internal/responder"
	"github.com/frahmantamala/crm-assistant/internal/session"
)

const (
	DefaultMaxHistory = 10

	DefaultSystemPrompt = "You are the CRM assistant. You help the signed-in user find, " +
		"summarise and organise their contacts. Only use the data described below and " +
		"never reveal contacts outside the categories the user may access."

	troubleNotice = "I'm having trouble reaching the AI service right now, so here is what I can tell you from local data."
)

type Source string

const (
	SourceLocal    Source = "local"
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Reply is a chat answer plus where it came from.
type Reply struct {
	responder.Reply
	Source Source `json:"source"`
}

// Service answers chat messages for one session at a time. Without a remote
// model every answer comes from the local responder; with one, the local
// responder is the degraded path when the model fails.
type Service struct {
	llm        LLM
	responder  *responder.Responder
	maxHistory int
	timeout    time.Duration
	logger     *slog.Logger
}

func NewService(llm LLM, resp *responder.Responder, cfg Config, logger *slog.Logger) *Service {
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		llm:        llm,
		responder:  resp,
		maxHistory: maxHistory,
		timeout:    timeout,
		logger:     logger,
	}
}

// Provider names the backend answering chats.
func (s *Service) Provider() string {
	if s.llm == nil {
		return string(ProviderLocal)
	}
	return s.llm.Name()
}

// Chat records message and the answer in the store's history. It never fails:
// model errors and malformed model output degrade to the local reply.
func (s *Service) Chat(ctx context.Context, store *session.Store, message string) Reply {
	u := store.User()
	snap := store.Snapshot()
	history := store.Recent(s.maxHistory)
	store.Append(session.SpeakerUser, message)

	local := s.responder.Respond(message, u, snap)
	reply := Reply{Reply: local, Source: SourceLocal}

	if s.llm != nil {
		reply = s.remote(ctx, history, message, u, snap, local)
	}

	store.Append(session.SpeakerAssistant, reply.Message)
	return reply
}

func (s *Service) remote(ctx context.Context, history []session.Turn, message string, u *auth.UserContext, snap responder.Snapshot, local responder.Reply) Reply {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	content, err := s.llm.Complete(ctx, s.prompt(history, message, u, snap))
	if err == nil {
		var parsed responder.Reply
		parsed, err = parseCompletion(content)
		if err == nil {
			parsed.Intent = "llm"
			s.logger.DebugContext(ctx, "llm reply",
				"provider", s.llm.Name(),
				"duration_ms", time.Since(start).Milliseconds(),
				"actions", len(parsed.Actions))
			return Reply{Reply: parsed, Source: SourceLLM}
		}
	}

	s.logger.WarnContext(ctx, "llm unavailable, answering locally",
		"provider", s.llm.Name(),
		"code", internal.ErrCodeLLMUnavailable,
		"error", err)
	local.Message = troubleNotice + "\n\n" + local.Message
	return Reply{Reply: local, Source: SourceFallback}
}

func (s *Service) prompt(history []session.Turn, message string, u *auth.UserContext, snap responder.Snapshot) []Message {
	messages := make([]Message, 0, len(history)+1)
	for i, t := range history {
		if i == 0 && t.Role == session.SpeakerSystem {
			messages = append(messages, Message{Role: string(t.Role), Content: t.Content + "\n\n" + describeContext(u, snap)})
			continue
		}
		messages = append(messages, Message{Role: string(t.Role), Content: t.Content})
	}
	return append(messages, Message{Role: string(session.SpeakerUser), Content: message})
}

func describeContext(u *auth.UserContext, snap responder.Snapshot) string {
	var b strings.Builder
	if u == nil {
		b.WriteString("No user is signed in. Do not disclose any data.\n")
	} else {
		fmt.Fprintf(&b, "Signed-in user: %s (role %s).\n", u.Username, auth.RoleLabel(u))
		categories := "all"
		if !auth.IsAdmin(u) && len(u.AllowedCategories) > 0 {
			categories = strings.Join(u.AllowedCategories, ", ")
		}
		fmt.Fprintf(&b, "Accessible categories: %s.\n", categories)
	}

	visible := contact.Accessible(u, snap.Contacts)
	fmt.Fprintf(&b, "Contacts visible to this user: %d.\n", len(visible))
	if dist := contact.Distribution(u, snap.Contacts); len(dist) > 0 {
		parts := make([]string, len(dist))
		for i, d := range dist {
			parts[i] = fmt.Sprintf("%s %d", d.Category, d.Count)
		}
		fmt.Fprintf(&b, "By category: %s.\n", strings.Join(parts, ", "))
	}
	if auth.IsAdmin(u) && snap.Users != nil {
		fmt.Fprintf(&b, "Users on record: %d.\n", len(snap.Users))
	}

	if caps := responder.Capabilities(u); len(caps) > 0 {
		b.WriteString("The user may ask you to:\n")
		for _, c := range caps {
			b.WriteString("• " + c + "\n")
		}
	}

	fmt.Fprintf(&b, "Answer with a JSON object {\"message\": string, \"actions\": [{\"type\": string, \"label\": string, \"path\": string, \"params\": object}]} "+
		"with at most %d actions. Action types: navigate, search, filter, create, view, export, sort, ui, suggestion.", responder.MaxActions)
	return b.String()
}
