package action

// Type names the side effect the host should perform.
type Type string

const (
	TypeNavigate   Type = "navigate"
	TypeSearch     Type = "search"
	TypeFilter     Type = "filter"
	TypeCreate     Type = "create"
	TypeView       Type = "view"
	TypeExport     Type = "export"
	TypeSort       Type = "sort"
	TypeUI         Type = "ui"
	TypeSuggestion Type = "suggestion"
)

// Action is a structured side-effect request handed back to the host UI.
// The core never performs it.
type Action struct {
	Type   Type              `json:"type"`
	Label  string            `json:"label,omitempty"`
	Path   string            `json:"path,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

func Navigate(label, path string) Action {
	return Action{Type: TypeNavigate, Label: label, Path: path}
}

func New(t Type, label string, params map[string]string) Action {
	return Action{Type: t, Label: label, Params: params}
}

// With returns a copy of a carrying one more parameter.
func (a Action) With(key, value string) Action {
	params := make(map[string]string, len(a.Params)+1)
	for k, v := range a.Params {
		params[k] = v
	}
	params[key] = value
	a.Params = params
	return a
}

var known = map[Type]bool{
	TypeNavigate: true, TypeSearch: true, TypeFilter: true, TypeCreate: true, TypeView: true,
	TypeExport: true, TypeSort: true, TypeUI: true, TypeSuggestion: true,
}

// Known reports whether t is one of the action types the host understands.
func (t Type) Known() bool {
	return known[t]
}
