package responder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	"github.com/frahmantamala/crm-assistant/internal/core/action"
	"github.com/frahmantamala/crm-assistant/internal/user"
)

func battery() []detector {
	return []detector{
		{"navigation", (*Responder).navigation},
		{"user_listing", (*Responder).userListing},
		{"birthdays", (*Responder).birthdays},
		{"follow_ups", (*Responder).followUps},
		{"duplicates", (*Responder).duplicates},
		{"data_quality", (*Responder).dataQuality},
		{"top_contacts", (*Responder).topContacts},
		{"distribution", (*Responder).distribution},
		{"inactive", (*Responder).inactive},
		{"recent", (*Responder).recent},
		{"contact_count", (*Responder).contactCount},
		{"dashboard_stats", (*Responder).dashboardStats},
		{"export", (*Responder).export},
		{"create_contact", (*Responder).createContact},
		{"bulk_update", (*Responder).bulkUpdate},
		{"sort", (*Responder).sortSuggestion},
		{"relationship_map", (*Responder).relationshipMap},
		{"contact_listing", (*Responder).contactListing},
		{"category_filter", (*Responder).categoryFilter},
		{"company_search", (*Responder).companySearch},
		{"entity_search", (*Responder).entitySearch},
		{"help", (*Responder).help},
	}
}

func (r *Responder) deny(req request, rule, reason string) Reply {
	r.logger.Warn("chat request denied",
		"rule", rule,
		"user_id", userID(req.user),
		"role", auth.RoleLabel(req.user),
		"reason", reason)
	return Reply{Message: "Sorry, " + reason + "."}
}

func bullets(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• " + l)
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

func viewActions(contacts []contact.Summary) []action.Action {
	n := len(contacts)
	if n > MaxActions {
		n = MaxActions
	}
	out := make([]action.Action, 0, n)
	for _, c := range contacts[:n] {
		out = append(out, action.Action{Type: action.TypeView, Label: "View " + c.Name, Path: "/contacts/" + c.ID})
	}
	return out
}

// contactList renders up to limit lines and notes how many were left out.
func contactList(contacts []contact.Summary, limit int, line func(contact.Summary) string) string {
	shown := contacts
	if len(shown) > limit {
		shown = shown[:limit]
	}
	lines := make([]string, len(shown))
	for i, c := range shown {
		lines[i] = line(c)
	}
	out := bullets(lines)
	if rest := len(contacts) - len(shown); rest > 0 {
		out += fmt.Sprintf("\n...and %d more", rest)
	}
	return out
}

var navVerb = regexp.MustCompile(`^(?:please\s+)?(?:go to|open|navigate to|take me to|switch to)\s+(?:the\s+|my\s+)?([a-z ]+?)(?:\s+page)?[?.!]*$`)

var navTargets = map[string]string{
	"dashboard":       "/dashboard",
	"home":            "/dashboard",
	"contacts":        "/contacts",
	"contact list":    "/contacts",
	"settings":        "/settings",
	"profile":         "/profile",
	"activity":        "/activity",
	"activities":      "/activity",
	"activity log":    "/activity",
	"admin":           "/admin/users",
	"admin panel":     "/admin/users",
	"users":           "/admin/users",
	"user management": "/admin/users",
}

func (r *Responder) navigation(req request) (Reply, bool) {
	m := navVerb.FindStringSubmatch(req.q.text)
	if m == nil {
		return Reply{}, false
	}
	target := strings.TrimSpace(m[1])
	path, ok := navTargets[target]
	if !ok {
		return Reply{}, false
	}
	if strings.HasPrefix(path, "/admin") && !auth.IsAdmin(req.user) {
		return r.deny(req, "navigation", fmt.Sprintf("your role (%s) cannot access user management", auth.RoleLabel(req.user))), true
	}
	label := strings.ToUpper(target[:1]) + target[1:]
	return Reply{
		Message: "Opening " + target + ".",
		Actions: []action.Action{action.Navigate(label, path)},
	}, true
}

type UserListing struct {
	Total  int              `json:"total"`
	ByRole []user.RoleCount `json:"byRole"`
	Users  []user.Summary   `json:"users"`
}

func (r *Responder) userListing(req request) (Reply, bool) {
	q := req.q
	if !(q.has("how many users", "team members", "user list", "all users") ||
		(q.hasWord("users") && q.hasWord("show", "list", "all", "many", "who"))) {
		return Reply{}, false
	}
	if !auth.IsAdmin(req.user) {
		return r.deny(req, "user_listing", fmt.Sprintf("your role (%s) cannot view user accounts", auth.RoleLabel(req.user))), true
	}
	users := req.snap.Users
	if users == nil {
		return Reply{Message: "The user list has not been loaded yet. Refresh the session and ask again."}, true
	}
	byRole := user.CountByRole(users)
	var b strings.Builder
	fmt.Fprintf(&b, "Total Users: %d", len(users))
	roleLines := make([]string, len(byRole))
	for i, rc := range byRole {
		roleLines[i] = fmt.Sprintf("%s: %d", rc.Role, rc.Count)
	}
	b.WriteString("\n\nBy role:\n" + bullets(roleLines))
	if len(users) > 0 {
		shown := users
		if len(shown) > MaxListed {
			shown = shown[:MaxListed]
		}
		lines := make([]string, len(shown))
		for i, u := range shown {
			lines[i] = u.DisplayLine()
		}
		b.WriteString("\n\nUsers:\n" + bullets(lines))
		if rest := len(users) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "\n...and %d more", rest)
		}
	}
	return Reply{
		Message: b.String(),
		Actions: []action.Action{action.Navigate("Manage users", "/admin/users")},
		Data:    UserListing{Total: len(users), ByRole: byRole, Users: users},
	}, true
}

var windowDays = regexp.MustCompile(`(?:next|coming|within)\s+(\d{1,3})\s+days?`)

func birthdayWindow(q query) int {
	if m := windowDays.FindStringSubmatch(q.text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if q.has("this week", "next week") {
		return 7
	}
	return contact.DefaultBirthdayWindow
}

func (r *Responder) birthdays(req request) (Reply, bool) {
	if !req.q.has("birthday", "bday") {
		return Reply{}, false
	}
	if !auth.CanUseFeature(req.user, auth.FeatureViewBirthdays) {
		return r.deny(req, "birthdays", auth.FeatureDenialReason(req.user, auth.FeatureViewBirthdays)), true
	}
	days := birthdayWindow(req.q)
	upcoming := contact.UpcomingBirthdays(req.user, req.snap.Contacts, req.now, days)
	if len(upcoming) == 0 {
		return Reply{Message: fmt.Sprintf("No birthdays in the next %d days.", days), Data: upcoming}, true
	}
	shown := upcoming
	if len(shown) > MaxListed {
		shown = shown[:MaxListed]
	}
	lines := make([]string, len(shown))
	people := make([]contact.Summary, len(shown))
	for i, b := range shown {
		when := "today"
		switch {
		case b.DaysUntil == 1:
			when = "tomorrow"
		case b.DaysUntil > 1:
			when = fmt.Sprintf("in %d days", b.DaysUntil)
		}
		lines[i] = fmt.Sprintf("%s - %s (%s)", b.Contact.Name, b.Date.Format("Jan 2"), when)
		people[i] = b.Contact
	}
	msg := fmt.Sprintf("Upcoming birthdays in the next %d days (%d):\n%s", days, len(upcoming), bullets(lines))
	return Reply{Message: msg, Actions: viewActions(people), Data: upcoming}, true
}

func lastSeen(c contact.Summary, now time.Time) string {
	if c.LastInteraction == nil {
		return c.Name + " - never contacted"
	}
	days := int(now.Sub(*c.LastInteraction).Hours() / 24)
	return fmt.Sprintf("%s - last contact %s ago", c.Name, plural(days, "day", "days"))
}

func (r *Responder) followUps(req request) (Reply, bool) {
	if !req.q.has("follow up", "follow-up", "followup", "reach out", "need attention", "needs attention", "check in") {
		return Reply{}, false
	}
	due := contact.FollowUps(req.user, req.snap.Contacts, req.now, 0)
	if len(due) == 0 {
		return Reply{Message: "You're all caught up. No contacts need a follow-up right now.", Data: due}, true
	}
	msg := fmt.Sprintf("%s need a follow-up:\n%s",
		plural(len(due), "contact", "contacts"),
		contactList(due, MaxPreview, func(c contact.Summary) string { return lastSeen(c, req.now) }))
	return Reply{Message: msg, Actions: viewActions(due), Data: due}, true
}

func duplicateReason(p contact.DuplicatePair) string {
	switch {
	case p.Original.Email != "" && p.Original.Phone != "":
		return "same email and phone"
	case p.Original.Email != "":
		return "same email"
	case p.Original.Phone != "":
		return "same phone"
	default:
		return "no email or phone"
	}
}

func (r *Responder) duplicates(req request) (Reply, bool) {
	if !req.q.has("duplicate", "dupes", "same email") {
		return Reply{}, false
	}
	pairs := contact.Duplicates(req.user, req.snap.Contacts)
	if len(pairs) == 0 {
		return Reply{Message: "No duplicate contacts found.", Data: pairs}, true
	}
	shown := pairs
	if len(shown) > MaxListed {
		shown = shown[:MaxListed]
	}
	lines := make([]string, len(shown))
	dupes := make([]contact.Summary, len(shown))
	for i, p := range shown {
		lines[i] = fmt.Sprintf("%s and %s (%s)", p.Original.Name, p.Duplicate.Name, duplicateReason(p))
		dupes[i] = p.Duplicate
	}
	msg := fmt.Sprintf("Found %s:\n%s", plural(len(pairs), "potential duplicate", "potential duplicates"), bullets(lines))
	return Reply{Message: msg, Actions: viewActions(dupes), Data: pairs}, true
}

func (r *Responder) dataQuality(req request) (Reply, bool) {
	if !req.q.has("quality", "missing", "incomplete") {
		return Reply{}, false
	}
	report := contact.DataQuality(req.user, req.snap.Contacts)
	msg := fmt.Sprintf("Data quality score: %d/100\n%s", report.Score, bullets([]string{
		fmt.Sprintf("Total contacts: %d", report.Total),
		fmt.Sprintf("Missing email: %d", report.MissingEmail),
		fmt.Sprintf("Missing phone: %d", report.MissingPhone),
		fmt.Sprintf("No lead score: %d", report.NoLeadScore),
	}))
	return Reply{Message: msg, Data: report}, true
}

var topN = regexp.MustCompile(`top\s+(\d{1,2})`)

func (r *Responder) topContacts(req request) (Reply, bool) {
	q := req.q
	if !(q.has("top contact", "top lead", "best lead", "hot lead", "highest score", "highest lead", "most promising") || topN.MatchString(q.text)) {
		return Reply{}, false
	}
	n := contact.DefaultTopContacts
	if m := topN.FindStringSubmatch(q.text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			n = v
		}
	}
	top := contact.TopContacts(req.user, req.snap.Contacts, n)
	if len(top) == 0 {
		return Reply{Message: "None of your contacts has a lead score yet.", Data: top}, true
	}
	lines := make([]string, len(top))
	for i, c := range top {
		lines[i] = fmt.Sprintf("%d. %s", i+1, c.DisplayLine())
	}
	msg := fmt.Sprintf("Top %d contacts by lead score:\n%s", len(top), strings.Join(lines, "\n"))
	return Reply{Message: msg, Actions: viewActions(top), Data: top}, true
}

func distributionLines(dist []contact.CategoryCount) string {
	lines := make([]string, len(dist))
	for i, d := range dist {
		lines[i] = fmt.Sprintf("%s: %d", d.Category, d.Count)
	}
	return bullets(lines)
}

func (r *Responder) distribution(req request) (Reply, bool) {
	if !req.q.has("distribution", "breakdown", "by category", "per category", "categories") {
		return Reply{}, false
	}
	dist := contact.Distribution(req.user, req.snap.Contacts)
	if len(dist) == 0 {
		return Reply{Message: "No categorised contacts to break down.", Data: dist}, true
	}
	return Reply{Message: "Contacts by category:\n" + distributionLines(dist), Data: dist}, true
}

func (r *Responder) inactive(req request) (Reply, bool) {
	if !req.q.has("inactive", "dormant", "haven't contacted", "havent contacted", "not contacted", "cold contacts") {
		return Reply{}, false
	}
	stale := contact.Inactive(req.user, req.snap.Contacts, req.now, 0)
	if len(stale) == 0 {
		return Reply{Message: "Every contact has been active in the last 60 days.", Data: stale}, true
	}
	msg := fmt.Sprintf("%s with no interaction in the last 60 days:\n%s",
		plural(len(stale), "contact", "contacts"),
		contactList(stale, MaxPreview, func(c contact.Summary) string { return lastSeen(c, req.now) }))
	return Reply{Message: msg, Actions: viewActions(stale), Data: stale}, true
}

func (r *Responder) recent(req request) (Reply, bool) {
	if !req.q.has("recent", "latest", "last contacted") {
		return Reply{}, false
	}
	recent := contact.Recent(req.user, req.snap.Contacts, 0)
	if len(recent) == 0 {
		return Reply{Message: "No recent interactions recorded.", Data: recent}, true
	}
	msg := "Recently contacted:\n" + contactList(recent, MaxListed, func(c contact.Summary) string {
		return fmt.Sprintf("%s - %s", c.Name, c.LastInteraction.Format("Jan 2, 2006"))
	})
	return Reply{Message: msg, Actions: viewActions(recent), Data: recent}, true
}

type ContactCount struct {
	Total        int                     `json:"total"`
	Distribution []contact.CategoryCount `json:"distribution"`
}

func (r *Responder) contactCount(req request) (Reply, bool) {
	q := req.q
	if !(q.has("how many contact", "total contacts", "number of contacts", "contact count") || q.hasWord("count")) {
		return Reply{}, false
	}
	visible := contact.Accessible(req.user, req.snap.Contacts)
	dist := contact.Distribution(req.user, req.snap.Contacts)
	msg := fmt.Sprintf("Total Contacts: %d", len(visible))
	if len(dist) > 0 {
		msg += "\n\nBy category:\n" + distributionLines(dist)
	}
	return Reply{Message: msg, Data: ContactCount{Total: len(visible), Distribution: dist}}, true
}

func (r *Responder) dashboardStats(req request) (Reply, bool) {
	if !req.q.hasWord("dashboard", "stats", "statistics", "overview", "summary") {
		return Reply{}, false
	}
	if !auth.CanUseFeature(req.user, auth.FeatureViewStatistics) {
		return r.deny(req, "dashboard_stats", auth.FeatureDenialReason(req.user, auth.FeatureViewStatistics)), true
	}
	stats := req.snap.Dashboard
	if stats == nil {
		return Reply{
			Message: "Dashboard statistics are not loaded yet.",
			Actions: []action.Action{action.Navigate("Dashboard", "/dashboard")},
		}, true
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("Total contacts: %d", len(contact.Accessible(req.user, req.snap.Contacts))))
	if n, ok := stats.TotalUsers(); ok {
		lines = append(lines, fmt.Sprintf("Total users: %d", n))
	}
	if n, ok := stats.WeekActivities(); ok {
		lines = append(lines, fmt.Sprintf("Activities this week: %d", n))
	}
	msg := "Dashboard overview:\n" + bullets(lines)
	if acts := stats.RecentActivities(); len(acts) > 0 {
		if len(acts) > MaxPreview {
			acts = acts[:MaxPreview]
		}
		recent := make([]string, len(acts))
		for i, a := range acts {
			recent[i] = a.Description()
		}
		msg += "\n\nRecent activity:\n" + bullets(recent)
	}
	return Reply{
		Message: msg,
		Actions: []action.Action{action.Navigate("Dashboard", "/dashboard")},
		Data:    stats,
	}, true
}

func (r *Responder) export(req request) (Reply, bool) {
	if !req.q.hasWord("export", "download", "backup", "csv", "excel") {
		return Reply{}, false
	}
	if !auth.CanUseFeature(req.user, auth.FeatureExportContacts) {
		return r.deny(req, "export", auth.FeatureDenialReason(req.user, auth.FeatureExportContacts)), true
	}
	format, label := "csv", "CSV"
	if req.q.hasWord("excel", "xlsx") {
		format, label = "xlsx", "Excel"
	}
	n := len(contact.Accessible(req.user, req.snap.Contacts))
	return Reply{
		Message: fmt.Sprintf("Ready to export %s as %s.", plural(n, "contact", "contacts"), label),
		Actions: []action.Action{action.New(action.TypeExport, "Export to "+label, map[string]string{"format": format})},
	}, true
}

var createPattern = regexp.MustCompile(`(?:create|add|new)\s+(?:a\s+)?(?:new\s+)?contact(?:\s+(?:named|called|for)\s+(.+?))?[?.!]*$`)

func (r *Responder) createContact(req request) (Reply, bool) {
	m := createPattern.FindStringSubmatch(req.q.text)
	if m == nil {
		return Reply{}, false
	}
	if !auth.CanPerform(req.user, auth.ResourceContact, auth.ActionCreate) {
		return r.deny(req, "create_contact", auth.DenialReason(req.user, auth.ResourceContact, auth.ActionCreate)), true
	}
	a := action.Action{Type: action.TypeCreate, Label: "New contact", Path: "/contacts/new"}
	msg := "Opening the new contact form."
	if name := strings.TrimSpace(m[1]); name != "" {
		a = a.With("name", name)
		msg = fmt.Sprintf("Opening the new contact form for %s.", name)
	}
	return Reply{Message: msg, Actions: []action.Action{a}}, true
}

func suggestion(label, operation string, params map[string]string) action.Action {
	a := action.New(action.TypeSuggestion, label, map[string]string{"operation": operation})
	for k, v := range params {
		a = a.With(k, v)
	}
	return a
}

func (r *Responder) bulkUpdate(req request) (Reply, bool) {
	if !req.q.has("bulk", "update all", "mass update", "batch update") {
		return Reply{}, false
	}
	if !auth.CanPerform(req.user, auth.ResourceContact, auth.ActionUpdate) {
		return r.deny(req, "bulk_update", auth.DenialReason(req.user, auth.ResourceContact, auth.ActionUpdate)), true
	}
	return Reply{
		Message: "Select the contacts to change on the contact list, then apply the update there.",
		Actions: []action.Action{suggestion("Bulk update", "bulk_update", nil)},
	}, true
}

var sortFields = []struct {
	keyword string
	field   string
}{
	{"score", "lead_score"},
	{"company", "company"},
	{"recent", "last_interaction"},
	{"interaction", "last_interaction"},
	{"date", "created_at"},
	{"name", "name"},
}

func (r *Responder) sortSuggestion(req request) (Reply, bool) {
	if !(req.q.hasWord("sort") || req.q.has("order by")) {
		return Reply{}, false
	}
	field := "name"
	for _, f := range sortFields {
		if strings.Contains(req.q.text, f.keyword) {
			field = f.field
			break
		}
	}
	direction := "asc"
	if req.q.hasWord("desc", "descending", "highest") || field == "lead_score" || field == "last_interaction" {
		direction = "desc"
	}
	if req.q.hasWord("asc", "ascending", "lowest") {
		direction = "asc"
	}
	return Reply{
		Message: fmt.Sprintf("You can sort the contact list by %s.", strings.ReplaceAll(field, "_", " ")),
		Actions: []action.Action{suggestion("Sort by "+strings.ReplaceAll(field, "_", " "), "sort", map[string]string{"field": field, "direction": direction})},
	}, true
}

func (r *Responder) relationshipMap(req request) (Reply, bool) {
	if !req.q.has("relationship", "network map", "connections", "org chart") {
		return Reply{}, false
	}
	return Reply{
		Message: "The relationship map shows how your contacts connect through shared companies.",
		Actions: []action.Action{suggestion("Open relationship map", "relationship_map", nil)},
	}, true
}

var categoryPattern = regexp.MustCompile(`(?:show|list|display)\s+(?:me\s+)?(?:all\s+)?(?:my\s+)?(?:the\s+)?([a-z][a-z0-9 _-]*?)\s+contacts`)

func (r *Responder) categoryFilter(req request) (Reply, bool) {
	m := categoryPattern.FindStringSubmatch(req.q.text)
	if m == nil {
		return Reply{}, false
	}
	name, ok := r.categories.Canonical(m[1])
	if !ok {
		return Reply{}, false
	}
	if !auth.HasCategoryAccess(req.user, name) {
		return r.deny(req, "category_filter", auth.CategoryDenialReason(req.user, name)), true
	}
	matches := contact.ByCategory(req.user, req.snap.Contacts, name)
	msg := fmt.Sprintf("Showing %s in %s.", plural(len(matches), "contact", "contacts"), name)
	if len(matches) > 0 {
		msg += "\n" + contactList(matches, MaxListed, contact.Summary.DisplayLine)
	}
	return Reply{
		Message: msg,
		Actions: []action.Action{{Type: action.TypeFilter, Label: name + " contacts", Path: "/contacts", Params: map[string]string{"category": name}}},
		Data:    matches,
	}, true
}

var listAllPattern = regexp.MustCompile(`^(?:please\s+)?(?:show|list|display|give)\s+(?:me\s+)?(?:all\s+)?(?:of\s+)?(?:my\s+)?(?:the\s+)?contacts[?.!]*$`)

// contactListing answers "show me all contacts" style requests with every
// contact the user may see.
func (r *Responder) contactListing(req request) (Reply, bool) {
	if !listAllPattern.MatchString(req.q.text) {
		return Reply{}, false
	}
	if !auth.CanPerform(req.user, auth.ResourceContact, auth.ActionRead) {
		return r.deny(req, "contact_listing", auth.DenialReason(req.user, auth.ResourceContact, auth.ActionRead)), true
	}
	visible := contact.Accessible(req.user, req.snap.Contacts)
	msg := fmt.Sprintf("You have %s.", plural(len(visible), "contact", "contacts"))
	if len(visible) > 0 {
		msg += "\n" + contactList(visible, MaxListed, contact.Summary.DisplayLine)
	}
	return Reply{
		Message: msg,
		Actions: []action.Action{action.Navigate("Contacts", "/contacts")},
		Data:    visible,
	}, true
}

var (
	companyPattern = regexp.MustCompile(`(?:(?:employees|people|contacts|staff|anyone|someone|who works)\s+(?:at|from)|(?:from|at)\s+company)\s+(.+?)[?.!]*$`)
	companyPrefix  = regexp.MustCompile(`^(?:the\s+)?company\s+`)
)

func (r *Responder) companySearch(req request) (Reply, bool) {
	m := companyPattern.FindStringSubmatch(req.q.text)
	if m == nil {
		return Reply{}, false
	}
	company := strings.TrimSpace(companyPrefix.ReplaceAllString(m[1], ""))
	matches := contact.ByCompany(req.user, req.snap.Contacts, company)
	if len(matches) == 0 {
		return Reply{Message: fmt.Sprintf("No contacts found at %q.", company), Data: matches}, true
	}
	msg := fmt.Sprintf("Found %s at %q:\n%s", plural(len(matches), "contact", "contacts"), company,
		contactList(matches, MaxListed, contact.Summary.DisplayLine))
	return Reply{Message: msg, Actions: viewActions(matches), Data: matches}, true
}

var (
	quoted        = regexp.MustCompile(`["“]([^"”]+)["”]`)
	searchKeyword = regexp.MustCompile(`(?:find|search for|search|look for|look up|show me|who is)\s+(.+?)[?.!]*$`)
	searchFiller  = regexp.MustCompile(`^(?:contacts?\s+(?:named|called)\s+|the\s+contact\s+|a\s+contact\s+|contacts?\s+|someone\s+named\s+)`)
)

// searchQuery prefers quoted text, otherwise the phrase after the keyword.
func searchQuery(q query) (string, bool) {
	if m := quoted.FindStringSubmatch(q.raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	m := searchKeyword.FindStringSubmatch(q.text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(searchFiller.ReplaceAllString(strings.TrimSpace(m[1]), "")), true
}

func (r *Responder) entitySearch(req request) (Reply, bool) {
	if !req.q.has("find", "search", "look for", "look up", "show me", "who is") {
		return Reply{}, false
	}
	term, ok := searchQuery(req.q)
	if !ok || term == "" {
		return Reply{}, false
	}
	matches := contact.Search(req.user, req.snap.Contacts, term)
	if len(matches) == 0 {
		return Reply{Message: fmt.Sprintf("No contacts match %q.", term), Data: matches}, true
	}
	msg := fmt.Sprintf("Found %s matching %q:\n%s", plural(len(matches), "contact", "contacts"), term,
		contactList(matches, MaxListed, contact.Summary.DisplayLine))
	return Reply{Message: msg, Actions: viewActions(matches), Data: matches}, true
}

func (r *Responder) help(req request) (Reply, bool) {
	if !(req.q.hasWord("help", "commands", "features") || req.q.has("what can you do", "what can i ask", "what can i do")) {
		return Reply{}, false
	}
	return r.capabilityReply(req.user, "Here's what I can help you with:"), true
}
