package command

import (
	"regexp"
	"strings"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/category"
	"github.com/frahmantamala/crm-assistant/internal/core/action"
)

// Category is the kind of side effect a command produces.
type Category string

const (
	CategoryNavigate Category = "navigate"
	CategorySearch   Category = "search"
	CategoryFilter   Category = "filter"
	CategoryCreate   Category = "create"
	CategoryAction   Category = "action"
	CategoryUI       Category = "ui"
	CategoryAdmin    Category = "admin"
)

// Group is the intent group a command is listed under in help views.
type Group string

const (
	GroupNavigation Group = "navigation"
	GroupSearch     Group = "search"
	GroupFilter     Group = "filter"
	GroupCreate     Group = "create"
	GroupAnalytics  Group = "analytics"
	GroupReminders  Group = "reminders"
	GroupData       Group = "data management"
	GroupSorting    Group = "sorting"
	GroupUI         Group = "ui"
	GroupAdmin      Group = "admin"
)

// GroupOrder is the display order of groups.
var GroupOrder = []Group{
	GroupNavigation,
	GroupSearch,
	GroupFilter,
	GroupCreate,
	GroupAnalytics,
	GroupReminders,
	GroupData,
	GroupSorting,
	GroupUI,
	GroupAdmin,
}

// Specificity ranks how narrowly a pattern matches. Higher wins.
type Specificity int

const (
	CatchAll      Specificity = 1
	Parameterized Specificity = 2
	Exact         Specificity = 3
)

func (s Specificity) String() string {
	switch s {
	case Exact:
		return "exact"
	case Parameterized:
		return "parameterized"
	case CatchAll:
		return "catch-all"
	default:
		return "unknown"
	}
}

const (
	MessageNotRecognized = "Command not recognized"
	executingPrefix      = "Executing: "
)

// Descriptor is one recognisable utterance family. Patterns are anchored and
// matched against the whole normalised transcript.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    Category    `json:"category"`
	Group       Group       `json:"group"`
	Specificity Specificity `json:"specificity"`
	Pattern     string      `json:"pattern"`
	Examples    []string    `json:"examples"`
	AdminOnly   bool        `json:"adminOnly,omitempty"`

	re *regexp.Regexp
}

// Match carries the named captures of a successful pattern match.
type Match struct {
	Transcript string
	Args       map[string]string
}

func (m Match) Arg(name string) string {
	return m.Args[name]
}

func (d *Descriptor) match(normalized string) (Match, bool) {
	sub := d.re.FindStringSubmatch(normalized)
	if sub == nil {
		return Match{}, false
	}
	m := Match{Transcript: normalized, Args: map[string]string{}}
	for i, name := range d.re.SubexpNames() {
		if name == "" || i >= len(sub) {
			continue
		}
		if v := strings.TrimSpace(sub[i]); v != "" {
			m.Args[name] = v
		}
	}
	return m, true
}

// Env is what a handler may consult. Handlers are pure: they decide the action
// and never perform it.
type Env struct {
	User       *auth.UserContext
	Categories *category.Vocabulary
}

type HandlerFunc func(env Env, m Match) (action.Action, error)

// Definition declares a command. Either Phrases (exact literals) or Expr (a
// regular expression body) is set. Phrases double as examples.
type Definition struct {
	Name        string
	Description string
	Category    Category
	Group       Group
	Phrases     []string
	Expr        string
	Specificity Specificity
	Examples    []string
	AdminOnly   bool
	Handle      HandlerFunc
}

// Result is the outcome of interpreting one transcript.
type Result struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Category Category       `json:"category,omitempty"`
	Command  string         `json:"command,omitempty"`
	Action   *action.Action `json:"action,omitempty"`
}

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	trailingPunct = regexp.MustCompile(`[.!?,;:]+$`)
)

// Normalize lowercases, trims, collapses inner whitespace and drops trailing
// sentence punctuation added by speech engines.
func Normalize(transcript string) string {
	s := strings.ToLower(strings.TrimSpace(transcript))
	s = trailingPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
