package contact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Summary is the read-only projection of a backend contact used for local search
// and analytics. It is rebuilt whenever the host refetches the contact list.
type Summary struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Company         string     `json:"company,omitempty"`
	Categories      []string   `json:"categories"`
	Tags            []string   `json:"tags,omitempty"`
	Status          string     `json:"status,omitempty"`
	LeadScore       *int       `json:"leadScore,omitempty"`
	LastInteraction *time.Time `json:"lastInteraction,omitempty"`
	Birthday        *time.Time `json:"birthday,omitempty"`
}

// Point is one entry of a multi-valued email or phone field.
type Point struct {
	Value     string `json:"value"`
	IsPrimary bool   `json:"is_primary"`
}

// Points accepts either a bare string or an array of Point records.
type Points []Point

func (p *Points) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*p = nil
			return nil
		}
		*p = Points{{Value: s, IsPrimary: true}}
		return nil
	}
	var list []Point
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("contact point must be a string or a list of {value, is_primary}: %w", err)
	}
	*p = list
	return nil
}

// Primary returns the primary entry, falling back to the first non-empty one.
func (p Points) Primary() string {
	for _, pt := range p {
		if pt.IsPrimary && strings.TrimSpace(pt.Value) != "" {
			return strings.TrimSpace(pt.Value)
		}
	}
	for _, pt := range p {
		if v := strings.TrimSpace(pt.Value); v != "" {
			return v
		}
	}
	return ""
}

// FlexibleID accepts numeric or string identifiers.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexibleID(n.String())
	return nil
}

// FlexibleTime accepts RFC 3339 timestamps and plain dates.
type FlexibleTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func (t *FlexibleTime) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*t = FlexibleTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(*s)); err == nil {
			*t = FlexibleTime{Time: parsed, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognised time %q", *s)
}

func (t FlexibleTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Raw is the backend wire shape of a contact. Both snake_case and camelCase
// spellings are accepted for the optional fields.
type Raw struct {
	ID                   FlexibleID   `json:"id"`
	Name                 string       `json:"name"`
	FirstName            string       `json:"first_name"`
	LastName             string       `json:"last_name"`
	Email                Points       `json:"email"`
	Emails               Points       `json:"emails"`
	Phone                Points       `json:"phone"`
	Phones               Points       `json:"phones"`
	Company              string       `json:"company"`
	Category             string       `json:"category"`
	Categories           []string     `json:"categories"`
	Tags                 []string     `json:"tags"`
	Status               string       `json:"status"`
	LeadScore            *float64     `json:"lead_score"`
	LeadScoreCamel       *float64     `json:"leadScore"`
	LastInteraction      FlexibleTime `json:"last_interaction"`
	LastInteractionCamel FlexibleTime `json:"lastInteraction"`
	Birthday             FlexibleTime `json:"birthday"`
}

// Normalize converts a backend record into a Summary.
func Normalize(r Raw) Summary {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
	}

	email := r.Email.Primary()
	if email == "" {
		email = r.Emails.Primary()
	}
	phone := r.Phone.Primary()
	if phone == "" {
		phone = r.Phones.Primary()
	}

	categories := r.Categories
	if len(categories) == 0 && r.Category != "" {
		categories = []string{r.Category}
	}

	score := r.LeadScore
	if score == nil {
		score = r.LeadScoreCamel
	}

	last := r.LastInteraction
	if !last.Valid {
		last = r.LastInteractionCamel
	}

	return Summary{
		ID:              string(r.ID),
		Name:            name,
		Email:           email,
		Phone:           phone,
		Company:         strings.TrimSpace(r.Company),
		Categories:      CleanLabels(categories),
		Tags:            CleanLabels(r.Tags),
		Status:          strings.TrimSpace(r.Status),
		LeadScore:       clampScore(score),
		LastInteraction: last.ptr(),
		Birthday:        r.Birthday.ptr(),
	}
}

// NormalizeAll decodes a backend contact list payload.
func NormalizeAll(payload []byte) ([]Summary, error) {
	var raws []Raw
	if err := json.Unmarshal(payload, &raws); err != nil {
		var wrapped struct {
			Contacts []Raw `json:"contacts"`
			Data     []Raw `json:"data"`
		}
		if werr := json.Unmarshal(payload, &wrapped); werr != nil {
			return nil, fmt.Errorf("decode contacts: %w", err)
		}
		raws = wrapped.Contacts
		if len(raws) == 0 {
			raws = wrapped.Data
		}
	}

	out := make([]Summary, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r))
	}
	return out, nil
}

// CleanLabels trims, drops empties and removes case-insensitive duplicates,
// keeping the first spelling.
func CleanLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		key := strings.ToLower(l)
		if l == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

func clampScore(score *float64) *int {
	if score == nil {
		return nil
	}
	v := int(*score + 0.5)
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return &v
}

// DisplayLine renders a contact as a single list line.
func (s Summary) DisplayLine() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if s.Company != "" {
		b.WriteString(" (" + s.Company + ")")
	}
	if s.Email != "" {
		b.WriteString(" - " + s.Email)
	}
	if s.LeadScore != nil {
		b.WriteString(" - score " + strconv.Itoa(*s.LeadScore))
	}
	return b.String()
}
