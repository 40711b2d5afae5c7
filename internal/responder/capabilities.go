package responder

import (
	"fmt"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/core/action"
)

type capability struct {
	text    string
	example string
	allowed func(u *auth.UserContext) bool
}

func canReadContacts(u *auth.UserContext) bool {
	return auth.CanPerform(u, auth.ResourceContact, auth.ActionRead)
}

func feature(f auth.Feature) func(*auth.UserContext) bool {
	return func(u *auth.UserContext) bool { return auth.CanUseFeature(u, f) }
}

var capabilities = []capability{
	{"Search contacts by name, company or email", "find Ada", canReadContacts},
	{"Find people at a company", "employees at Acme", canReadContacts},
	{"Count contacts with a category breakdown", "how many contacts", canReadContacts},
	{"Show top contacts by lead score", "show top contacts", canReadContacts},
	{"List upcoming birthdays", "upcoming birthdays", feature(auth.FeatureViewBirthdays)},
	{"Suggest who needs a follow-up", "who needs a follow up", canReadContacts},
	{"Find duplicate contacts", "find duplicates", canReadContacts},
	{"Check data quality", "check data quality", canReadContacts},
	{"Show recent and inactive contacts", "show inactive contacts", canReadContacts},
	{"Summarise dashboard statistics", "show dashboard stats", feature(auth.FeatureViewStatistics)},
	{"Start a new contact", "add a new contact", func(u *auth.UserContext) bool {
		return auth.CanPerform(u, auth.ResourceContact, auth.ActionCreate)
	}},
	{"Export contacts", "export to csv", feature(auth.FeatureExportContacts)},
	{"Prepare bulk updates", "bulk update", func(u *auth.UserContext) bool {
		return auth.CanPerform(u, auth.ResourceContact, auth.ActionUpdate)
	}},
	{"List users by role", "how many users", auth.IsAdmin},
	{"Navigate the app", "go to settings", func(u *auth.UserContext) bool { return u != nil }},
}

// Capabilities lists what u is allowed to ask for, in display order.
func Capabilities(u *auth.UserContext) []string {
	var out []string
	for _, c := range capabilities {
		if c.allowed(u) {
			out = append(out, fmt.Sprintf("%s (try %q)", c.text, c.example))
		}
	}
	return out
}

func (r *Responder) capabilityReply(u *auth.UserContext, intro string) Reply {
	var lines []string
	var actions []action.Action
	for _, c := range capabilities {
		if !c.allowed(u) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (try %q)", c.text, c.example))
		if len(actions) < MaxActions {
			actions = append(actions, action.New(action.TypeSuggestion, c.example, map[string]string{"prompt": c.example}))
		}
	}
	if len(lines) == 0 {
		return Reply{Message: "Sign in to use the assistant.", Actions: []action.Action{}}
	}
	return Reply{Message: intro + "\n" + bullets(lines), Actions: actions}
}

func (r *Responder) fallback(req request) Reply {
	r.logger.Debug("chat intent not recognized", "user_id", userID(req.user))
	reply := r.capabilityReply(req.user, "I'm not sure how to help with that. Here's what I can do:")
	reply.Intent = "fallback"
	return reply
}
