package command

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/category"
)

// Registry is the validated, ordered command table. It is immutable after Build
// and safe for concurrent use.
type Registry struct {
	ordered    []*Descriptor
	base       []*Descriptor
	admin      []*Descriptor
	handlers   map[string]HandlerFunc
	categories *category.Vocabulary
}

// NewRegistry builds the standard command table.
func NewRegistry(categories *category.Vocabulary) (*Registry, error) {
	return Build(categories, Definitions())
}

// Build compiles defs, orders them by specificity (declaration order breaks ties)
// and validates every example against the result.
func Build(categories *category.Vocabulary, defs []Definition) (*Registry, error) {
	if categories == nil {
		categories = category.DefaultVocabulary()
	}
	r := &Registry{
		handlers:   make(map[string]HandlerFunc, len(defs)),
		categories: categories,
	}

	var errs []error
	for _, def := range defs {
		d, err := compile(def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.handlers[d.Name]; dup {
			errs = append(errs, fmt.Errorf("command %q declared twice", d.Name))
			continue
		}
		r.handlers[d.Name] = def.Handle
		r.ordered = append(r.ordered, d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sortBySpecificity(r.ordered)
	for _, d := range r.ordered {
		if d.AdminOnly {
			r.admin = append(r.admin, d)
		} else {
			r.base = append(r.base, d)
		}
	}

	if err := Validate(r.ordered); err != nil {
		return nil, err
	}
	return r, nil
}

func compile(def Definition) (*Descriptor, error) {
	if def.Name == "" {
		return nil, errors.New("command without a name")
	}
	if def.Handle == nil {
		return nil, fmt.Errorf("command %q has no handler", def.Name)
	}

	d := &Descriptor{
		Name:        def.Name,
		Description: def.Description,
		Category:    def.Category,
		Group:       def.Group,
		Specificity: def.Specificity,
		AdminOnly:   def.AdminOnly,
		Examples:    append([]string(nil), def.Examples...),
	}

	var body string
	switch {
	case len(def.Phrases) > 0 && def.Expr != "":
		return nil, fmt.Errorf("command %q sets both phrases and an expression", def.Name)
	case len(def.Phrases) > 0:
		quoted := make([]string, len(def.Phrases))
		for i, p := range def.Phrases {
			quoted[i] = regexp.QuoteMeta(Normalize(p))
		}
		body = strings.Join(quoted, "|")
		d.Specificity = Exact
		d.Examples = append(append([]string(nil), def.Phrases...), d.Examples...)
	case def.Expr != "":
		body = def.Expr
		if d.Specificity == 0 {
			d.Specificity = Parameterized
		}
	default:
		return nil, fmt.Errorf("command %q has no pattern", def.Name)
	}

	re, err := regexp.Compile("(?i)^(?:" + body + ")$")
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", def.Name, err)
	}
	d.re = re
	d.Pattern = re.String()
	return d, nil
}

func sortBySpecificity(ds []*Descriptor) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Specificity > ds[j].Specificity
	})
}

// Validate checks an ordered table: every descriptor has examples, every example
// resolves to its own descriptor, and no two descriptors of equal specificity
// match the same example.
func Validate(ordered []*Descriptor) error {
	var errs []error
	for _, d := range ordered {
		if len(d.Examples) == 0 {
			errs = append(errs, fmt.Errorf("command %q has no examples", d.Name))
			continue
		}
		for _, ex := range d.Examples {
			n := Normalize(ex)
			first := resolve(ordered, n)
			if first == nil {
				errs = append(errs, fmt.Errorf("example %q of %q matches nothing", ex, d.Name))
				continue
			}
			if first != d {
				errs = append(errs, fmt.Errorf("example %q of %q is shadowed by %q", ex, d.Name, first.Name))
			}
			for _, other := range ordered {
				if other == d || other.Specificity != d.Specificity {
					continue
				}
				if _, ok := other.match(n); ok {
					errs = append(errs, fmt.Errorf("example %q is ambiguous between %q and %q (both %s)", ex, d.Name, other.Name, d.Specificity))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func resolve(ordered []*Descriptor, normalized string) *Descriptor {
	for _, d := range ordered {
		if _, ok := d.match(normalized); ok {
			return d
		}
	}
	return nil
}

// Resolve returns the first descriptor matching the normalised transcript.
// Admin-only commands are included so that non-admins get a denial rather
// than "not recognized".
func (r *Registry) Resolve(normalized string) (*Descriptor, Match, bool) {
	for _, d := range r.ordered {
		if m, ok := d.match(normalized); ok {
			return d, m, true
		}
	}
	return nil, Match{}, false
}

func (r *Registry) handler(name string) HandlerFunc {
	return r.handlers[name]
}

func (r *Registry) Categories() *category.Vocabulary {
	return r.categories
}

// ListCommands returns the commands u can discover: the base table, with the
// admin block appended for admins.
func (r *Registry) ListCommands(u *auth.UserContext) []Descriptor {
	out := make([]Descriptor, 0, len(r.base)+len(r.admin))
	for _, d := range r.base {
		out = append(out, *d)
	}
	if auth.IsAdmin(u) {
		for _, d := range r.admin {
			out = append(out, *d)
		}
	}
	return out
}

type GroupListing struct {
	Group    Group        `json:"group"`
	Commands []Descriptor `json:"commands"`
}

// Groups projects ListCommands into intent groups in GroupOrder, omitting
// empty ones.
func (r *Registry) Groups(u *auth.UserContext) []GroupListing {
	byGroup := make(map[Group][]Descriptor)
	for _, d := range r.ListCommands(u) {
		byGroup[d.Group] = append(byGroup[d.Group], d)
	}
	var out []GroupListing
	for _, g := range GroupOrder {
		if cmds := byGroup[g]; len(cmds) > 0 {
			out = append(out, GroupListing{Group: g, Commands: cmds})
		}
	}
	return out
}
