package command

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/core/action"
)

// Definitions is the standard command table in declaration order.
func Definitions() []Definition {
	return []Definition{
		// navigation
		{
			Name: "nav.dashboard", Description: "Open the dashboard",
			Category: CategoryNavigate, Group: GroupNavigation,
			Phrases: []string{"go to dashboard", "open dashboard", "show dashboard", "dashboard", "go home", "home", "take me home"},
			Handle:  navigate("Dashboard", "/dashboard"),
		},
		{
			Name: "nav.contacts", Description: "Open the contact list",
			Category: CategoryNavigate, Group: GroupNavigation,
			Phrases: []string{"go to contacts", "open contacts", "show contacts", "show all contacts", "show my contacts", "show all my contacts",
				"show me contacts", "show me all contacts", "show me my contacts", "show me all my contacts",
				"list contacts", "list my contacts", "contacts", "my contacts", "contact list"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionRead, navigate("Contacts", "/contacts")),
		},
		{
			Name: "nav.contact_detail", Description: "Open a contact by name",
			Category: CategoryNavigate, Group: GroupNavigation,
			Expr:     `(?:open|view) contact (?P<name>.+)`,
			Examples: []string{"open contact ada lovelace", "view contact bob"},
			Handle:   withPermission(auth.ResourceContact, auth.ActionRead, openContact),
		},
		{
			Name: "nav.settings", Description: "Open settings",
			Category: CategoryNavigate, Group: GroupNavigation,
			Phrases: []string{"go to settings", "open settings", "settings", "preferences"},
			Handle:  navigate("Settings", "/settings"),
		},
		{
			Name: "nav.profile", Description: "Open your profile",
			Category: CategoryNavigate, Group: GroupNavigation,
			Phrases: []string{"go to profile", "open profile", "my profile", "open my profile", "profile"},
			Handle:  navigate("Profile", "/profile"),
		},
		{
			Name: "nav.activity", Description: "Open the activity feed",
			Category: CategoryNavigate, Group: GroupNavigation,
			Phrases: []string{"go to activity", "open activity", "show activity", "activity", "activity log", "activity feed"},
			Handle:  navigate("Activity", "/activity"),
		},
		{
			Name: "nav.back", Description: "Go back to the previous page",
			Category: CategoryNavigate, Group: GroupNavigation,
			Phrases: []string{"go back", "back", "previous page"},
			Handle:  uiCommand("Back", "back"),
		},

		// search
		{
			Name: "search.company", Description: "Find contacts at a company",
			Category: CategorySearch, Group: GroupSearch,
			Expr:     `(?:(?:find|show|list|search for) (?:contacts|people|employees) |employees |people )(?:from|at) (?P<company>.+)`,
			Examples: []string{"find contacts from acme", "employees at globex", "show people at initech"},
			Handle:   withPermission(auth.ResourceContact, auth.ActionRead, searchCompany),
		},
		{
			Name: "search.contacts", Description: "Search contacts by name, company or email",
			Category: CategorySearch, Group: GroupSearch,
			Expr:        `(?:search(?: for)?|find|look up|look for|show me|who is) (?P<query>.+)`,
			Specificity: CatchAll,
			Examples:    []string{"search for acme", "find ada", "who is bob", "look up globex"},
			Handle:      withPermission(auth.ResourceContact, auth.ActionRead, searchContacts),
		},

		// filter
		{
			Name: "filter.category", Description: "Show contacts in a category",
			Category: CategoryFilter, Group: GroupFilter,
			Expr:     `show (?:me )?(?:all )?(?:my )?(?P<category>[a-z][a-z0-9 _-]*?) contacts`,
			Examples: []string{"show marketing contacts", "show client contacts", "show me all vendor contacts"},
			Handle:   withPermission(auth.ResourceContact, auth.ActionRead, filterCategory),
		},
		{
			Name: "filter.by_category", Description: "Filter contacts by category",
			Category: CategoryFilter, Group: GroupFilter,
			Expr:     `filter (?:contacts )?by (?:category )?(?P<category>[a-z][a-z0-9 _-]*)`,
			Examples: []string{"filter by vendor", "filter contacts by category client"},
			Handle:   withPermission(auth.ResourceContact, auth.ActionRead, filterCategory),
		},
		{
			Name: "filter.tag", Description: "Show contacts with a tag",
			Category: CategoryFilter, Group: GroupFilter,
			Expr:     `(?:show )?(?:contacts|people) tagged (?:as |with )?(?P<tag>.+)`,
			Examples: []string{"show contacts tagged vip", "contacts tagged with newsletter"},
			Handle:   withPermission(auth.ResourceContact, auth.ActionRead, filterTag),
		},
		{
			Name: "filter.clear", Description: "Clear all filters",
			Category: CategoryFilter, Group: GroupFilter,
			Phrases: []string{"clear filters", "clear filter", "reset filters", "remove filters", "show everything"},
			Handle: func(Env, Match) (action.Action, error) {
				return action.New(action.TypeFilter, "Clear filters", map[string]string{"clear": "true"}), nil
			},
		},

		// create
		{
			Name: "create.contact", Description: "Create a new contact",
			Category: CategoryCreate, Group: GroupCreate,
			Phrases: []string{"create contact", "add contact", "new contact", "create a contact", "add a contact", "create a new contact", "add a new contact", "create new contact", "add new contact"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionCreate, createContact),
		},
		{
			Name: "create.contact_named", Description: "Create a contact with a name",
			Category: CategoryCreate, Group: GroupCreate,
			Expr:     `(?:create|add) (?:a )?(?:new )?contact (?:named|called|for) (?P<name>.+)`,
			Examples: []string{"add a new contact named jane doe", "create contact called bob"},
			Handle:   withPermission(auth.ResourceContact, auth.ActionCreate, createContact),
		},
		{
			Name: "create.note", Description: "Add a note",
			Category: CategoryCreate, Group: GroupCreate,
			Phrases: []string{"add note", "create note", "new note", "add a note"},
			Handle:  withPermission(auth.ResourceNotes, auth.ActionCreate, createEntity("note")),
		},
		{
			Name: "create.task", Description: "Add a task",
			Category: CategoryCreate, Group: GroupCreate,
			Phrases: []string{"add task", "create task", "new task", "add a task", "create a task"},
			Handle:  withPermission(auth.ResourceTasks, auth.ActionCreate, createEntity("task")),
		},
		{
			Name: "create.reminder", Description: "Create a task from a reminder",
			Category: CategoryCreate, Group: GroupCreate,
			Expr:     `remind me to (?P<task>.+)`,
			Examples: []string{"remind me to call ada tomorrow"},
			Handle:   withPermission(auth.ResourceTasks, auth.ActionCreate, createEntity("task")),
		},

		// analytics
		{
			Name: "analytics.statistics", Description: "Show statistics",
			Category: CategoryAction, Group: GroupAnalytics,
			Phrases: []string{"show statistics", "show stats", "open statistics", "statistics", "show analytics", "analytics"},
			Handle:  withFeature(auth.FeatureViewStatistics, navigateWith("Statistics", "/dashboard", "view", "statistics")),
		},
		{
			Name: "analytics.distribution", Description: "Show contacts per category",
			Category: CategoryAction, Group: GroupAnalytics,
			Phrases: []string{"show category distribution", "category distribution", "category breakdown", "show category breakdown", "contacts by category"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionRead, panel("Category distribution", "distribution")),
		},
		{
			Name: "analytics.top", Description: "Show top contacts by lead score",
			Category: CategoryAction, Group: GroupAnalytics,
			Phrases: []string{"show top contacts", "top contacts", "show top leads", "top leads", "show hot leads", "best leads"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionRead, panel("Top contacts", "top_contacts")),
		},
		{
			Name: "analytics.recent", Description: "Show recently contacted people",
			Category: CategoryAction, Group: GroupAnalytics,
			Phrases: []string{"show recent contacts", "recent contacts", "recently contacted"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionRead, panel("Recent contacts", "recent")),
		},
		{
			Name: "analytics.inactive", Description: "Show inactive contacts",
			Category: CategoryAction, Group: GroupAnalytics,
			Phrases: []string{"show inactive contacts", "inactive contacts", "who is inactive"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionRead, panel("Inactive contacts", "inactive")),
		},

		// reminders
		{
			Name: "reminders.birthdays", Description: "Show upcoming birthdays",
			Category: CategoryAction, Group: GroupReminders,
			Phrases: []string{"show birthdays", "upcoming birthdays", "show upcoming birthdays", "birthdays", "whose birthday is coming up"},
			Handle:  withFeature(auth.FeatureViewBirthdays, panel("Upcoming birthdays", "birthdays")),
		},
		{
			Name: "reminders.follow_ups", Description: "Show contacts that need a follow-up",
			Category: CategoryAction, Group: GroupReminders,
			Phrases: []string{"show follow ups", "show follow-ups", "follow ups", "follow-ups", "who needs follow up", "who needs a follow up", "pending follow ups"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionRead, panel("Follow-ups", "follow_ups")),
		},

		// data management
		{
			Name: "data.duplicates", Description: "Find duplicate contacts",
			Category: CategoryAction, Group: GroupData,
			Phrases: []string{"find duplicates", "show duplicates", "check duplicates", "check for duplicates", "duplicate contacts", "find duplicate contacts"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionRead, panel("Duplicates", "duplicates")),
		},
		{
			Name: "data.quality", Description: "Check data quality",
			Category: CategoryAction, Group: GroupData,
			Phrases: []string{"check data quality", "data quality", "show data quality", "data quality report"},
			Handle:  withPermission(auth.ResourceContact, auth.ActionRead, panel("Data quality", "data_quality")),
		},
		{
			Name: "data.export", Description: "Export contacts",
			Category: CategoryAction, Group: GroupData,
			Phrases: []string{"export contacts", "export", "download contacts", "export to csv", "export to excel", "backup contacts"},
			Handle:  withFeature(auth.FeatureExportContacts, exportContacts),
		},
		{
			Name: "data.import", Description: "Import contacts",
			Category: CategoryAction, Group: GroupData,
			Phrases: []string{"import contacts", "import", "upload contacts", "import from csv"},
			Handle:  withFeature(auth.FeatureImportContacts, navigate("Import contacts", "/contacts/import")),
		},

		// sorting
		{
			Name: "sort.by", Description: "Sort the contact list",
			Category: CategoryAction, Group: GroupSorting,
			Expr:     `sort (?:contacts )?by (?P<field>name|company|lead score|score|last interaction|last contacted|date added|created date)(?: (?P<direction>ascending|descending|asc|desc))?`,
			Examples: []string{"sort by name", "sort contacts by lead score descending", "sort by company asc"},
			Handle:   withPermission(auth.ResourceContact, auth.ActionRead, sortContacts),
		},

		// ui
		{
			Name: "ui.refresh", Description: "Refresh the data",
			Category: CategoryUI, Group: GroupUI,
			Phrases: []string{"refresh", "reload", "refresh page", "reload page", "refresh data"},
			Handle:  uiCommand("Refresh", "refresh"),
		},
		{
			Name: "ui.dark_mode", Description: "Switch to dark mode",
			Category: CategoryUI, Group: GroupUI,
			Phrases: []string{"dark mode", "enable dark mode", "switch to dark mode", "turn on dark mode"},
			Handle:  uiCommand("Dark mode", "theme_dark"),
		},
		{
			Name: "ui.light_mode", Description: "Switch to light mode",
			Category: CategoryUI, Group: GroupUI,
			Phrases: []string{"light mode", "enable light mode", "switch to light mode", "turn off dark mode"},
			Handle:  uiCommand("Light mode", "theme_light"),
		},
		{
			Name: "ui.sidebar", Description: "Toggle the sidebar",
			Category: CategoryUI, Group: GroupUI,
			Phrases: []string{"toggle sidebar", "hide sidebar", "show sidebar", "collapse sidebar"},
			Handle:  uiCommand("Sidebar", "toggle_sidebar"),
		},
		{
			Name: "ui.scroll", Description: "Scroll the page",
			Category: CategoryUI, Group: GroupUI,
			Expr:     `scroll (?P<direction>up|down|to top|to bottom)`,
			Examples: []string{"scroll down", "scroll to top"},
			Handle: func(_ Env, m Match) (action.Action, error) {
				return action.New(action.TypeUI, "Scroll", map[string]string{
					"command":   "scroll",
					"direction": strings.TrimPrefix(m.Arg("direction"), "to "),
				}), nil
			},
		},
		{
			Name: "ui.help", Description: "Show available voice commands",
			Category: CategoryUI, Group: GroupUI,
			Phrases: []string{"help", "show commands", "what can i say", "list commands", "voice commands"},
			Handle:  uiCommand("Help", "show_help"),
		},
		{
			Name: "ui.stop", Description: "Stop listening",
			Category: CategoryUI, Group: GroupUI,
			Phrases: []string{"stop listening", "stop", "cancel"},
			Handle:  uiCommand("Stop listening", "stop_listening"),
		},
		{
			Name: "ui.clear_chat", Description: "Start a new conversation",
			Category: CategoryUI, Group: GroupUI,
			Phrases: []string{"clear chat", "clear conversation", "new conversation"},
			Handle:  uiCommand("Clear chat", "clear_chat"),
		},
		{
			Name: "ui.logout", Description: "Sign out",
			Category: CategoryAction, Group: GroupUI,
			Phrases: []string{"log out", "logout", "sign out"},
			Handle:  uiCommand("Sign out", "logout"),
		},

		// admin
		{
			Name: "admin.users", Description: "Open user management",
			Category: CategoryAdmin, Group: GroupAdmin, AdminOnly: true,
			Phrases: []string{"open admin", "go to admin", "admin", "admin panel", "open admin panel", "manage users", "user management", "open user management", "show users", "list users", "show all users"},
			Handle:  withAdmin("access user management", navigate("User management", "/admin/users")),
		},
		{
			Name: "admin.user_detail", Description: "Open a user account",
			Category: CategoryAdmin, Group: GroupAdmin, AdminOnly: true,
			Expr:     `(?:open|view|edit) user (?P<name>.+)`,
			Examples: []string{"open user sam", "edit user jo"},
			Handle:   withAdmin("view user accounts", navigate("User", "/admin/users")),
		},
		{
			Name: "admin.create_user", Description: "Create a user account",
			Category: CategoryAdmin, Group: GroupAdmin, AdminOnly: true,
			Phrases: []string{"create user", "add user", "new user", "create a new user", "add a new user"},
			Handle:  withAdmin("create users", navigate("New user", "/admin/users/new")),
		},
		{
			Name: "admin.roles", Description: "Manage roles and permissions",
			Category: CategoryAdmin, Group: GroupAdmin, AdminOnly: true,
			Phrases: []string{"manage roles", "open roles", "role management", "manage permissions"},
			Handle:  withAdmin("manage roles", navigate("Roles", "/admin/roles")),
		},
	}
}

func navigate(label, path string) HandlerFunc {
	return func(_ Env, m Match) (action.Action, error) {
		a := action.Navigate(label, path)
		if name := m.Arg("name"); name != "" {
			a = a.With("search", name)
		}
		return a, nil
	}
}

func navigateWith(label, path, key, value string) HandlerFunc {
	return func(Env, Match) (action.Action, error) {
		return action.Navigate(label, path).With(key, value), nil
	}
}

func panel(label, name string) HandlerFunc {
	return func(Env, Match) (action.Action, error) {
		return action.Action{Type: action.TypeUI, Label: label, Path: "/contacts", Params: map[string]string{"panel": name}}, nil
	}
}

func uiCommand(label, command string) HandlerFunc {
	return func(Env, Match) (action.Action, error) {
		return action.New(action.TypeUI, label, map[string]string{"command": command}), nil
	}
}

func withAdmin(what string, next HandlerFunc) HandlerFunc {
	return func(env Env, m Match) (action.Action, error) {
		if !auth.IsAdmin(env.User) {
			return action.Action{}, internal.NewPermissionDeniedError(fmt.Sprintf("your role (%s) cannot %s", auth.RoleLabel(env.User), what))
		}
		return next(env, m)
	}
}

func withPermission(resource auth.Resource, act auth.Action, next HandlerFunc) HandlerFunc {
	return func(env Env, m Match) (action.Action, error) {
		if !auth.CanPerform(env.User, resource, act) {
			return action.Action{}, internal.NewPermissionDeniedError(auth.DenialReason(env.User, resource, act))
		}
		return next(env, m)
	}
}

func withFeature(feature auth.Feature, next HandlerFunc) HandlerFunc {
	return func(env Env, m Match) (action.Action, error) {
		if !auth.CanUseFeature(env.User, feature) {
			return action.Action{}, internal.NewPermissionDeniedError(auth.FeatureDenialReason(env.User, feature))
		}
		return next(env, m)
	}
}

func openContact(_ Env, m Match) (action.Action, error) {
	return action.Navigate("Contact", "/contacts").With("search", m.Arg("name")), nil
}

func searchContacts(_ Env, m Match) (action.Action, error) {
	q := strings.Trim(m.Arg("query"), `"' `)
	return action.Action{Type: action.TypeSearch, Label: "Search: " + q, Path: "/contacts", Params: map[string]string{"query": q}}, nil
}

func searchCompany(_ Env, m Match) (action.Action, error) {
	company := m.Arg("company")
	return action.Action{Type: action.TypeFilter, Label: "Company: " + company, Path: "/contacts", Params: map[string]string{"company": company}}, nil
}

func filterCategory(env Env, m Match) (action.Action, error) {
	raw := m.Arg("category")
	name, ok := env.Categories.Canonical(raw)
	if !ok {
		return action.Action{}, internal.NewValidationError(
			fmt.Sprintf("%q is not a recognized category; known categories: %s", raw, strings.Join(env.Categories.Names(), ", ")),
			internal.ErrCodeInvalidCategory)
	}
	if !auth.HasCategoryAccess(env.User, name) {
		return action.Action{}, internal.NewPermissionDeniedError(auth.CategoryDenialReason(env.User, name))
	}
	return action.Action{Type: action.TypeFilter, Label: name + " contacts", Path: "/contacts", Params: map[string]string{"category": name}}, nil
}

func filterTag(_ Env, m Match) (action.Action, error) {
	tag := m.Arg("tag")
	return action.Action{Type: action.TypeFilter, Label: "Tag: " + tag, Path: "/contacts", Params: map[string]string{"tag": tag}}, nil
}

func createContact(_ Env, m Match) (action.Action, error) {
	a := action.Action{Type: action.TypeCreate, Label: "New contact", Path: "/contacts/new"}
	if name := m.Arg("name"); name != "" {
		a = a.With("name", name)
	}
	return a, nil
}

func createEntity(entity string) HandlerFunc {
	return func(_ Env, m Match) (action.Action, error) {
		a := action.New(action.TypeCreate, "New "+entity, map[string]string{"entity": entity})
		if task := m.Arg("task"); task != "" {
			a = a.With("title", task)
		}
		return a, nil
	}
}

func exportContacts(_ Env, m Match) (action.Action, error) {
	format := "csv"
	if strings.Contains(m.Transcript, "excel") {
		format = "xlsx"
	}
	return action.New(action.TypeExport, "Export contacts", map[string]string{"format": format}), nil
}

var sortFields = map[string]string{
	"name":             "name",
	"company":          "company",
	"lead score":       "lead_score",
	"score":            "lead_score",
	"last interaction": "last_interaction",
	"last contacted":   "last_interaction",
	"date added":       "created_at",
	"created date":     "created_at",
}

func sortContacts(_ Env, m Match) (action.Action, error) {
	field := sortFields[m.Arg("field")]
	direction := "desc"
	if field == "name" || field == "company" {
		direction = "asc"
	}
	switch m.Arg("direction") {
	case "ascending", "asc":
		direction = "asc"
	case "descending", "desc":
		direction = "desc"
	}
	return action.New(action.TypeSort, "Sort by "+m.Arg("field"), map[string]string{"field": field, "direction": direction}), nil
}
