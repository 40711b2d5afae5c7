package contact_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestContact(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Contact Suite")
}

func score(v int) *int { return &v }

func at(t time.Time) *time.Time { return &t }

var (
	admin      = &auth.UserContext{ID: 1, Username: "admin", Role: auth.RoleAdmin}
	clientOnly = &auth.UserContext{ID: 2, Username: "sam", Role: auth.RoleUser, AllowedCategories: []string{"Client"}}
	now        = time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)
)

var _ = Describe("Analytics", func() {
	var contacts []contact.Summary

	BeforeEach(func() {
		contacts = []contact.Summary{
			{ID: "1", Name: "Ada", Email: "ada@acme.io", Phone: "111", Company: "Acme", Categories: []string{"Client"}, LeadScore: score(90), LastInteraction: at(now.AddDate(0, 0, -2))},
			{ID: "2", Name: "Bob", Email: "bob@globex.io", Phone: "222", Company: "Globex", Categories: []string{"Vendor"}, LeadScore: score(40)},
			{ID: "3", Name: "Cy", Email: "cy@acme.io", Company: "Acme", Categories: []string{"Client", "Partner"}, LeadScore: score(75), LastInteraction: at(now.AddDate(0, 0, -45))},
			{ID: "4", Name: "Di", Phone: "444", Company: "Initech", Categories: []string{"Client"}, LastInteraction: at(now.AddDate(0, 0, -90))},
			{ID: "5", Name: "Ed", Email: "ed@globex.io", Phone: "555", Company: "Globex", Categories: []string{"Vendor"}, LeadScore: score(60), LastInteraction: at(now.AddDate(0, 0, -1))},
		}
	})

	Describe("Accessible", func() {
		It("returns every contact for an admin", func() {
			Expect(contact.Accessible(admin, contacts)).To(HaveLen(5))
		})

		It("keeps only contacts sharing an allowed category", func() {
			visible := contact.Accessible(clientOnly, contacts)
			Expect(visible).To(HaveLen(3))
			for _, c := range visible {
				Expect(c.Categories).To(ContainElement("Client"))
			}
		})

		It("returns nothing without a user", func() {
			Expect(contact.Accessible(nil, contacts)).To(BeEmpty())
		})
	})

	Describe("Distribution", func() {
		It("counts per category ordered by count", func() {
			dist := contact.Distribution(admin, contacts)
			Expect(dist).To(Equal([]contact.CategoryCount{
				{Category: "Client", Count: 3},
				{Category: "Vendor", Count: 2},
				{Category: "Partner", Count: 1},
			}))
		})

		It("ignores categories outside the allowed set", func() {
			dist := contact.Distribution(clientOnly, contacts)
			Expect(dist).To(Equal([]contact.CategoryCount{{Category: "Client", Count: 3}}))
		})

		It("sums to the contact count when each contact has one allowed category", func() {
			single := []contact.Summary{
				{ID: "a", Categories: []string{"Client"}},
				{ID: "b", Categories: []string{"client"}},
				{ID: "c", Categories: []string{"Client"}},
			}
			total := 0
			for _, c := range contact.Distribution(clientOnly, single) {
				total += c.Count
			}
			Expect(total).To(Equal(len(single)))
		})
	})

	Describe("TopContacts", func() {
		It("sorts scored contacts descending and defaults to five", func() {
			top := contact.TopContacts(admin, contacts, 0)
			Expect(top).To(HaveLen(4))
			Expect(top[0].Name).To(Equal("Ada"))
			Expect(top[1].Name).To(Equal("Cy"))
			Expect(top[3].Name).To(Equal("Bob"))
		})

		It("respects the limit and category filter", func() {
			top := contact.TopContacts(clientOnly, contacts, 1)
			Expect(top).To(HaveLen(1))
			Expect(top[0].Name).To(Equal("Ada"))
		})
	})

	Describe("UpcomingBirthdays", func() {
		birthdayIn := func(days int) *time.Time {
			d := now.AddDate(0, 0, days)
			return at(time.Date(1985, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
		}

		It("includes a birthday exactly at the window edge and excludes the next day", func() {
			list := []contact.Summary{
				{ID: "in", Name: "Edge", Categories: []string{"Client"}, Birthday: birthdayIn(30)},
				{ID: "out", Name: "Beyond", Categories: []string{"Client"}, Birthday: birthdayIn(31)},
			}
			upcoming := contact.UpcomingBirthdays(admin, list, now, 30)
			Expect(upcoming).To(HaveLen(1))
			Expect(upcoming[0].Contact.ID).To(Equal("in"))
			Expect(upcoming[0].DaysUntil).To(Equal(30))
		})

		It("includes today and skips birthdays already past this year", func() {
			list := []contact.Summary{
				{ID: "later", Categories: []string{"Client"}, Birthday: birthdayIn(5)},
				{ID: "today", Categories: []string{"Client"}, Birthday: birthdayIn(0)},
				{ID: "past", Categories: []string{"Client"}, Birthday: birthdayIn(-3)},
			}
			upcoming := contact.UpcomingBirthdays(admin, list, now, 0)
			Expect(upcoming).To(HaveLen(2))
			Expect(upcoming[0].Contact.ID).To(Equal("today"))
			Expect(upcoming[1].Contact.ID).To(Equal("later"))
		})
	})

	Describe("FollowUps and Inactive", func() {
		It("flags stale and never-contacted contacts in insertion order", func() {
			follow := contact.FollowUps(admin, contacts, now, 0)
			ids := make([]string, len(follow))
			for i, c := range follow {
				ids[i] = c.ID
			}
			Expect(ids).To(Equal([]string{"2", "3", "4"}))
		})

		It("uses a sixty day cutoff for inactivity", func() {
			inactive := contact.Inactive(admin, contacts, now, 0)
			ids := make([]string, len(inactive))
			for i, c := range inactive {
				ids[i] = c.ID
			}
			Expect(ids).To(Equal([]string{"2", "4"}))
		})
	})

	Describe("Recent", func() {
		It("orders by latest interaction", func() {
			recent := contact.Recent(admin, contacts, 2)
			Expect(recent).To(HaveLen(2))
			Expect(recent[0].Name).To(Equal("Ed"))
			Expect(recent[1].Name).To(Equal("Ada"))
		})
	})

	Describe("Duplicates", func() {
		It("matches emails case-insensitively", func() {
			pairs := contact.Duplicates(admin, []contact.Summary{
				{ID: "1", Email: "a@x.com", Phone: "1", Categories: []string{"Client"}},
				{ID: "2", Email: "A@X.COM", Phone: "1", Categories: []string{"Client"}},
			})
			Expect(pairs).To(HaveLen(1))
			Expect(pairs[0].Original.ID).To(Equal("1"))
			Expect(pairs[0].Duplicate.ID).To(Equal("2"))
		})

		It("reports later holders against the first occurrence", func() {
			pairs := contact.Duplicates(admin, []contact.Summary{
				{ID: "1", Email: "a@x.com", Categories: []string{"Client"}},
				{ID: "2", Email: "a@x.com", Categories: []string{"Client"}},
				{ID: "3", Email: "a@x.com", Categories: []string{"Client"}},
			})
			Expect(pairs).To(HaveLen(2))
			Expect(pairs[1].Original.ID).To(Equal("1"))
			Expect(pairs[1].Duplicate.ID).To(Equal("3"))
		})

		// Known edge case: contacts with neither email nor phone share the empty key.
		It("flags contacts missing both email and phone as duplicates", func() {
			pairs := contact.Duplicates(admin, []contact.Summary{
				{ID: "1", Name: "No Info", Categories: []string{"Client"}},
				{ID: "2", Name: "Also None", Categories: []string{"Client"}},
			})
			Expect(pairs).To(HaveLen(1))
		})
	})

	Describe("DataQuality", func() {
		It("applies the equal-weight formula", func() {
			Expect(contact.QualityScore(10, 2, 1, 3)).To(Equal(80))
		})

		It("scores an empty set as perfect", func() {
			report := contact.DataQuality(admin, nil)
			Expect(report.Total).To(Equal(0))
			Expect(report.Score).To(Equal(100))
		})

		It("itemises missing fields", func() {
			report := contact.DataQuality(admin, contacts)
			Expect(report.Total).To(Equal(5))
			Expect(report.MissingEmail).To(Equal(1))
			Expect(report.MissingPhone).To(Equal(1))
			Expect(report.NoLeadScore).To(Equal(1))
			Expect(report.Score).To(Equal(80))
		})
	})

	Describe("Search", func() {
		It("matches name, company and email substrings", func() {
			Expect(contact.Search(admin, contacts, "ACME")).To(HaveLen(2))
			Expect(contact.Search(admin, contacts, "bob@")).To(HaveLen(1))
			Expect(contact.Search(admin, contacts, "  ")).To(BeEmpty())
		})

		It("never returns contacts outside the allowed categories", func() {
			Expect(contact.Search(clientOnly, contacts, "globex")).To(BeEmpty())
		})

		It("filters by company and category", func() {
			Expect(contact.ByCompany(admin, contacts, "globex")).To(HaveLen(2))
			Expect(contact.ByCategory(admin, contacts, "partner")).To(HaveLen(1))
		})
	})
})
