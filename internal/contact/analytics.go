package contact

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/auth"
)

const (
	DefaultTopContacts    = 5
	DefaultBirthdayWindow = 30
	DefaultFollowUpAfter  = 30 * 24 * time.Hour
	DefaultInactiveAfter  = 60 * 24 * time.Hour
	DefaultRecentContacts = 5
)

// Accessible keeps the contacts u may see: all of them for an Admin or an
// unrestricted user, otherwise those sharing at least one allowed category.
func Accessible(u *auth.UserContext, contacts []Summary) []Summary {
	if u == nil {
		return nil
	}
	if auth.IsAdmin(u) || len(u.AllowedCategories) == 0 {
		return contacts
	}
	out := make([]Summary, 0, len(contacts))
	for _, c := range contacts {
		if auth.HasAnyCategoryAccess(u, c.Categories) {
			out = append(out, c)
		}
	}
	return out
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Distribution tallies contacts per category. Only categories the user may access
// are counted, even when a visible contact carries others. Ordered by count
// descending, then name.
func Distribution(u *auth.UserContext, contacts []Summary) []CategoryCount {
	index := make(map[string]int)
	var counts []CategoryCount
	for _, c := range Accessible(u, contacts) {
		for _, cat := range c.Categories {
			if !auth.HasCategoryAccess(u, cat) {
				continue
			}
			key := strings.ToLower(cat)
			i, ok := index[key]
			if !ok {
				i = len(counts)
				index[key] = i
				counts = append(counts, CategoryCount{Category: cat})
			}
			counts[i].Count++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})
	return counts
}

// TopContacts returns the n highest lead scores among visible scored contacts.
func TopContacts(u *auth.UserContext, contacts []Summary, n int) []Summary {
	if n <= 0 {
		n = DefaultTopContacts
	}
	var scored []Summary
	for _, c := range Accessible(u, contacts) {
		if c.LeadScore != nil {
			scored = append(scored, c)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].LeadScore > *scored[j].LeadScore
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

type UpcomingBirthday struct {
	Contact   Summary   `json:"contact"`
	Date      time.Time `json:"date"`
	DaysUntil int       `json:"daysUntil"`
}

// UpcomingBirthdays projects each birthday's month and day onto the current year
// and keeps those within [today, today+days]. Birthdays already past this year
// are not rolled into next year.
func UpcomingBirthdays(u *auth.UserContext, contacts []Summary, now time.Time, days int) []UpcomingBirthday {
	if days <= 0 {
		days = DefaultBirthdayWindow
	}
	today := startOfDay(now)
	var out []UpcomingBirthday
	for _, c := range Accessible(u, contacts) {
		if c.Birthday == nil {
			continue
		}
		projected := time.Date(today.Year(), c.Birthday.Month(), c.Birthday.Day(), 0, 0, 0, 0, today.Location())
		until := daysBetween(today, projected)
		if until < 0 || until > days {
			continue
		}
		out = append(out, UpcomingBirthday{Contact: c, Date: projected, DaysUntil: until})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntil < out[j].DaysUntil
	})
	return out
}

// FollowUps lists visible contacts never interacted with, or last touched before
// now-after. Insertion order is preserved.
func FollowUps(u *auth.UserContext, contacts []Summary, now time.Time, after time.Duration) []Summary {
	if after <= 0 {
		after = DefaultFollowUpAfter
	}
	return staleContacts(u, contacts, now.Add(-after))
}

// Inactive lists visible contacts with no interaction, or none since now-after.
func Inactive(u *auth.UserContext, contacts []Summary, now time.Time, after time.Duration) []Summary {
	if after <= 0 {
		after = DefaultInactiveAfter
	}
	return staleContacts(u, contacts, now.Add(-after))
}

func staleContacts(u *auth.UserContext, contacts []Summary, cutoff time.Time) []Summary {
	var out []Summary
	for _, c := range Accessible(u, contacts) {
		if c.LastInteraction == nil || c.LastInteraction.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}

// Recent returns the n most recently interacted-with visible contacts.
func Recent(u *auth.UserContext, contacts []Summary, n int) []Summary {
	if n <= 0 {
		n = DefaultRecentContacts
	}
	var touched []Summary
	for _, c := range Accessible(u, contacts) {
		if c.LastInteraction != nil {
			touched = append(touched, c)
		}
	}
	sort.SliceStable(touched, func(i, j int) bool {
		return touched[i].LastInteraction.After(*touched[j].LastInteraction)
	})
	if len(touched) > n {
		touched = touched[:n]
	}
	return touched
}

type DuplicatePair struct {
	Original  Summary `json:"original"`
	Duplicate Summary `json:"duplicate"`
}

// Duplicates keys each contact by lowercase(email)+phone. The first holder of a
// key is canonical and every later holder is reported against it. Contacts with
// neither email nor phone share the empty key and are reported as well.
func Duplicates(u *auth.UserContext, contacts []Summary) []DuplicatePair {
	first := make(map[string]Summary)
	var pairs []DuplicatePair
	for _, c := range Accessible(u, contacts) {
		key := DuplicateKey(c)
		if original, ok := first[key]; ok {
			pairs = append(pairs, DuplicatePair{Original: original, Duplicate: c})
			continue
		}
		first[key] = c
	}
	return pairs
}

func DuplicateKey(c Summary) string {
	return strings.ToLower(c.Email) + c.Phone
}

type QualityReport struct {
	Total        int `json:"total"`
	MissingEmail int `json:"missingEmail"`
	MissingPhone int `json:"missingPhone"`
	NoLeadScore  int `json:"noLeadScore"`
	Score        int `json:"score"`
}

// DataQuality weighs the three tracked fields equally:
// 100 - round(missing / (total*3) * 100). An empty set scores 100.
func DataQuality(u *auth.UserContext, contacts []Summary) QualityReport {
	visible := Accessible(u, contacts)
	r := QualityReport{Total: len(visible)}
	for _, c := range visible {
		if strings.TrimSpace(c.Email) == "" {
			r.MissingEmail++
		}
		if strings.TrimSpace(c.Phone) == "" {
			r.MissingPhone++
		}
		if c.LeadScore == nil {
			r.NoLeadScore++
		}
	}
	r.Score = QualityScore(r.Total, r.MissingEmail, r.MissingPhone, r.NoLeadScore)
	return r
}

func QualityScore(total, missingEmail, missingPhone, noLeadScore int) int {
	if total <= 0 {
		return 100
	}
	missing := float64(missingEmail + missingPhone + noLeadScore)
	return 100 - int(math.Round(missing/float64(total*3)*100))
}

// Search matches query as a case-insensitive substring of name, company or email.
func Search(u *auth.UserContext, contacts []Summary, query string) []Summary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Summary
	for _, c := range Accessible(u, contacts) {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Company), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out
}

func ByCompany(u *auth.UserContext, contacts []Summary, company string) []Summary {
	q := strings.ToLower(strings.TrimSpace(company))
	if q == "" {
		return nil
	}
	var out []Summary
	for _, c := range Accessible(u, contacts) {
		if strings.Contains(strings.ToLower(c.Company), q) {
			out = append(out, c)
		}
	}
	return out
}

func ByCategory(u *auth.UserContext, contacts []Summary, category string) []Summary {
	var out []Summary
	for _, c := range Accessible(u, contacts) {
		for _, cat := range c.Categories {
			if strings.EqualFold(cat, category) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days, immune to DST-length days.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
