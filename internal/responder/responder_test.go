package responder_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	"github.com/frahmantamala/crm-assistant/internal/core/action"
	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/responder"
	"github.com/frahmantamala/crm-assistant/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestResponder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Responder Suite")
}

func score(v int) *int { return &v }

func at(t time.Time) *time.Time { return &t }

var (
	now        = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	admin      = &auth.UserContext{ID: 1, Username: "admin", Role: auth.RoleAdmin}
	clientOnly = &auth.UserContext{ID: 2, Username: "sam", Role: auth.RoleUser, AllowedCategories: []string{"Client"}}
	restricted = &auth.UserContext{
		ID: 3, Username: "kim", Role: auth.RoleHR,
		Permissions: &auth.Permissions{
			Contact: &auth.CRUDPermissions{Create: auth.Bool(false), Update: auth.Bool(false)},
			CRMFeatures: &auth.FeaturePermissions{
				ViewStatistics: auth.Bool(false),
				ViewBirthdays:  auth.Bool(false),
				ExportContacts: auth.Bool(false),
			},
		},
	}
)

var _ = Describe("Responder", func() {
	var (
		r    *responder.Responder
		snap responder.Snapshot
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		r = responder.New(nil, slogger, responder.WithClock(func() time.Time { return now }))
		snap = responder.Snapshot{
			Contacts: []contact.Summary{
				{ID: "1", Name: "Ada Lovelace", Email: "ada@acme.io", Phone: "111", Company: "Acme", Categories: []string{"Client"}, LeadScore: score(90), LastInteraction: at(now.AddDate(0, 0, -2)), Birthday: at(time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC))},
				{ID: "2", Name: "Bob Stone", Email: "bob@globex.io", Company: "Globex", Categories: []string{"Vendor"}, LeadScore: score(40)},
				{ID: "3", Name: "Cy Young", Email: "cy@acme.io", Phone: "333", Company: "Acme", Categories: []string{"Client"}, LeadScore: score(75), LastInteraction: at(now.AddDate(0, 0, -45))},
				{ID: "4", Name: "Di Prince", Phone: "444", Company: "Initech", Categories: []string{"Client"}, LastInteraction: at(now.AddDate(0, 0, -90))},
				{ID: "5", Name: "Ed Nash", Email: "ed@globex.io", Phone: "555", Company: "Globex", Categories: []string{"Vendor"}, LeadScore: score(60), LastInteraction: at(now.AddDate(0, 0, -1))},
			},
			Users: []user.Summary{
				{ID: 1, Username: "admin", Email: "admin@crm.io", Role: auth.RoleAdmin, IsActive: true},
				{ID: 2, Username: "sam", Email: "sam@crm.io", Role: auth.RoleUser, IsActive: true},
				{ID: 3, Username: "kim", Email: "kim@crm.io", Role: auth.RoleHR, IsActive: false},
			},
			Dashboard: dashboard.Stats{
				"totalUsers":       3,
				"weekActivities":   12,
				"recentActivities": []any{map[string]any{"description": "Ada added"}},
				"extra":            "kept",
			},
		}
	})

	It("counts contacts with a category breakdown", func() {
		reply := r.Respond("how many contacts", admin, snap)
		Expect(reply.Intent).To(Equal("contact_count"))
		Expect(reply.Message).To(ContainSubstring("Total Contacts: 5"))
		Expect(reply.Message).To(ContainSubstring("Client: 3"))
		Expect(reply.Message).To(ContainSubstring("Vendor: 2"))
	})

	It("restricts aggregates to the allowed categories", func() {
		reply := r.Respond("How many contacts?", clientOnly, snap)
		Expect(reply.Message).To(ContainSubstring("Total Contacts: 3"))
		Expect(reply.Message).NotTo(ContainSubstring("Vendor"))
	})

	Describe("search", func() {
		It("finds contacts by name and offers view actions", func() {
			reply := r.Respond("find ada", admin, snap)
			Expect(reply.Intent).To(Equal("entity_search"))
			Expect(reply.Message).To(ContainSubstring("Ada Lovelace"))
			Expect(reply.Actions).To(HaveLen(1))
			Expect(reply.Actions[0].Type).To(Equal(action.TypeView))
			Expect(reply.Actions[0].Path).To(Equal("/contacts/1"))
		})

		It("prefers quoted text as the query", func() {
			reply := r.Respond(`search for "globex" please`, admin, snap)
			Expect(reply.Data).To(HaveLen(2))
		})

		It("caps view actions at five", func() {
			reply := r.Respond("search for o", admin, snap)
			Expect(len(reply.Actions)).To(BeNumerically("<=", responder.MaxActions))
		})

		It("searches by company", func() {
			reply := r.Respond("employees at acme", admin, snap)
			Expect(reply.Intent).To(Equal("company_search"))
			Expect(reply.Data).To(HaveLen(2))
		})

		It("reads past the word company in a company search", func() {
			reply := r.Respond("find contacts from company Acme", admin, snap)
			Expect(reply.Intent).To(Equal("company_search"))
			Expect(reply.Message).To(ContainSubstring(`at "acme"`))
			Expect(reply.Data).To(HaveLen(2))

			reply = r.Respond("who works at the company globex?", admin, snap)
			Expect(reply.Data).To(HaveLen(2))
		})

		It("lists every visible contact for show me all contacts", func() {
			reply := r.Respond("Show me all contacts", clientOnly, snap)
			Expect(reply.Intent).To(Equal("contact_listing"))
			Expect(reply.Message).To(ContainSubstring("You have 3 contacts."))
			Expect(reply.Data).To(HaveLen(3))
			Expect(reply.Actions).To(ConsistOf(action.Navigate("Contacts", "/contacts")))

			reply = r.Respond("list my contacts", admin, snap)
			Expect(reply.Data).To(HaveLen(5))
		})

		It("refuses the listing when contact reads are denied", func() {
			noRead := &auth.UserContext{ID: 9, Role: auth.RoleUser, Permissions: &auth.Permissions{
				Contact: &auth.CRUDPermissions{Read: auth.Bool(false)},
			}}
			reply := r.Respond("show all contacts", noRead, snap)
			Expect(reply.Intent).To(Equal("contact_listing"))
			Expect(reply.Message).To(HavePrefix("Sorry, "))
			Expect(reply.Actions).To(BeEmpty())
		})

		It("hides contacts outside the allowed categories", func() {
			reply := r.Respond("find bob", clientOnly, snap)
			Expect(reply.Message).To(ContainSubstring("No contacts match"))
		})
	})

	Describe("category filter", func() {
		It("denies a category outside the allowed set and names the allowed one", func() {
			reply := r.Respond("show marketing contacts", clientOnly, snap)
			Expect(reply.Intent).To(Equal("category_filter"))
			Expect(reply.Message).To(ContainSubstring("you only have access to: Client"))
			Expect(reply.Actions).To(BeEmpty())
		})

		It("returns a filter action for a known category", func() {
			reply := r.Respond("show vendor contacts", admin, snap)
			Expect(reply.Actions).To(HaveLen(1))
			Expect(reply.Actions[0].Type).To(Equal(action.TypeFilter))
			Expect(reply.Actions[0].Params).To(HaveKeyWithValue("category", "Vendor"))
		})
	})

	Describe("gated detectors", func() {
		It("lists users by role for admins only", func() {
			reply := r.Respond("how many users do we have", admin, snap)
			Expect(reply.Intent).To(Equal("user_listing"))
			Expect(reply.Message).To(ContainSubstring("Total Users: 3"))
			Expect(reply.Message).To(ContainSubstring("HR: 1"))

			reply = r.Respond("how many users do we have", clientOnly, snap)
			Expect(reply.Message).To(ContainSubstring("cannot view user accounts"))
			Expect(reply.Actions).To(BeEmpty())
		})

		It("formats dashboard statistics when allowed", func() {
			reply := r.Respond("show me the dashboard stats", admin, snap)
			Expect(reply.Intent).To(Equal("dashboard_stats"))
			Expect(reply.Message).To(ContainSubstring("Total users: 3"))
			Expect(reply.Message).To(ContainSubstring("Activities this week: 12"))
			Expect(reply.Message).To(ContainSubstring("Ada added"))

			reply = r.Respond("show me the dashboard stats", restricted, snap)
			Expect(reply.Message).To(ContainSubstring("view_statistics"))
		})

		It("explains a create denial instead of returning an action", func() {
			reply := r.Respond("add a new contact", restricted, snap)
			Expect(reply.Message).To(ContainSubstring("cannot create contacts"))
			Expect(reply.Actions).To(BeEmpty())

			reply = r.Respond("add a new contact named Jo", admin, snap)
			Expect(reply.Actions).To(HaveLen(1))
			Expect(reply.Actions[0].Params).To(HaveKeyWithValue("name", "jo"))
		})

		It("gates exports and birthdays on feature flags", func() {
			Expect(r.Respond("export to excel", restricted, snap).Actions).To(BeEmpty())
			exp := r.Respond("export to excel", admin, snap)
			Expect(exp.Actions[0].Params).To(HaveKeyWithValue("format", "xlsx"))

			Expect(r.Respond("upcoming birthdays", restricted, snap).Message).To(ContainSubstring("view_birthdays"))
		})
	})

	Describe("local aggregates", func() {
		It("lists upcoming birthdays", func() {
			reply := r.Respond("any birthdays coming up?", admin, snap)
			Expect(reply.Intent).To(Equal("birthdays"))
			Expect(reply.Message).To(ContainSubstring("Ada Lovelace - Mar 15 (in 5 days)"))
		})

		It("ranks top contacts", func() {
			reply := r.Respond("show top 2 contacts", admin, snap)
			Expect(reply.Intent).To(Equal("top_contacts"))
			Expect(reply.Data).To(HaveLen(2))
			Expect(reply.Message).To(ContainSubstring("1. Ada Lovelace"))
		})

		It("suggests follow-ups and reports the full count", func() {
			reply := r.Respond("who needs a follow up", admin, snap)
			Expect(reply.Intent).To(Equal("follow_ups"))
			Expect(reply.Message).To(HavePrefix("3 contacts need a follow-up"))
			Expect(reply.Message).To(ContainSubstring("Bob Stone - never contacted"))
		})

		It("reports duplicates, data quality, recent and inactive contacts", func() {
			Expect(r.Respond("find duplicates", admin, snap).Message).To(Equal("No duplicate contacts found."))

			quality := r.Respond("check data quality", admin, snap)
			Expect(quality.Data).To(Equal(contact.DataQuality(admin, snap.Contacts)))
			Expect(quality.Message).To(ContainSubstring("Data quality score: 80/100"))

			recent := r.Respond("recent contacts", admin, snap)
			Expect(recent.Intent).To(Equal("recent"))
			Expect(recent.Actions[0].Label).To(Equal("View Ed Nash"))

			inactive := r.Respond("show inactive contacts", admin, snap)
			Expect(inactive.Intent).To(Equal("inactive"))
			Expect(inactive.Data).To(HaveLen(2))
		})

		It("breaks contacts down by category", func() {
			reply := r.Respond("category breakdown", admin, snap)
			Expect(reply.Data).To(Equal([]contact.CategoryCount{{Category: "Client", Count: 3}, {Category: "Vendor", Count: 2}}))
		})
	})

	Describe("suggestions", func() {
		It("never executes bulk updates or sorts itself", func() {
			bulk := r.Respond("bulk update these leads", admin, snap)
			Expect(bulk.Actions).To(HaveLen(1))
			Expect(bulk.Actions[0].Type).To(Equal(action.TypeSuggestion))

			sorted := r.Respond("sort by lead score", admin, snap)
			Expect(sorted.Actions[0].Params).To(HaveKeyWithValue("field", "lead_score"))
			Expect(sorted.Actions[0].Params).To(HaveKeyWithValue("direction", "desc"))

			graph := r.Respond("show the relationship map", admin, snap)
			Expect(graph.Intent).To(Equal("relationship_map"))
		})
	})

	Describe("navigation", func() {
		It("maps keywords to paths", func() {
			reply := r.Respond("go to settings", clientOnly, snap)
			Expect(reply.Actions).To(Equal([]action.Action{action.Navigate("Settings", "/settings")}))
		})

		It("keeps admin pages for admins", func() {
			Expect(r.Respond("open admin", clientOnly, snap).Actions).To(BeEmpty())
			Expect(r.Respond("open admin", admin, snap).Actions[0].Path).To(Equal("/admin/users"))
		})
	})

	Describe("help and fallback", func() {
		It("only mentions permitted capabilities", func() {
			reply := r.Respond("what can you do", restricted, snap)
			Expect(reply.Intent).To(Equal("help"))
			Expect(reply.Message).NotTo(ContainSubstring("Export contacts"))
			Expect(reply.Message).NotTo(ContainSubstring("List users by role"))
			Expect(reply.Message).To(ContainSubstring("Search contacts"))

			Expect(r.Respond("help", admin, snap).Message).To(ContainSubstring("List users by role"))
		})

		It("falls back to the capability summary and never returns an empty message", func() {
			reply := r.Respond("tell me a joke", clientOnly, snap)
			Expect(reply.Intent).To(Equal("fallback"))
			Expect(reply.Message).To(HavePrefix("I'm not sure how to help with that."))
			Expect(len(reply.Actions)).To(BeNumerically("<=", responder.MaxActions))
			Expect(reply.Actions).NotTo(BeEmpty())
		})

		It("answers even without a signed-in user", func() {
			reply := r.Respond("hello", nil, responder.Snapshot{})
			Expect(reply.Message).NotTo(BeEmpty())
		})
	})
})
