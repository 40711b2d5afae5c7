package session_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/responder"
	"github.com/frahmantamala/crm-assistant/internal/session"
	"github.com/frahmantamala/crm-assistant/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

var (
	slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	admin   = &auth.UserContext{ID: 1, Username: "admin", Role: auth.RoleAdmin}
	member  = &auth.UserContext{ID: 2, Username: "sam", Role: auth.RoleUser, AllowedCategories: []string{"Client"}}
)

type fakeContacts struct {
	list  []contact.Summary
	err   error
	calls atomic.Int32
}

func (f *fakeContacts) ListContacts(context.Context) ([]contact.Summary, error) {
	f.calls.Add(1)
	return f.list, f.err
}

type fakeUsers struct {
	list  []user.Summary
	calls atomic.Int32
}

func (f *fakeUsers) ListUsers(context.Context) ([]user.Summary, error) {
	f.calls.Add(1)
	return f.list, nil
}

type fakeDashboard struct{ stats dashboard.Stats }

func (f fakeDashboard) GetDashboard(context.Context) (dashboard.Stats, error) {
	return f.stats, nil
}

var _ = Describe("Store", func() {
	var s *session.Store

	BeforeEach(func() {
		s = session.NewStore("sess-1", "You are a CRM assistant.")
	})

	It("starts with the system turn only", func() {
		h := s.History()
		Expect(h).To(HaveLen(1))
		Expect(h[0].Role).To(Equal(session.SpeakerSystem))
		Expect(h[0].Content).To(Equal("You are a CRM assistant."))
	})

	It("appends turns and clears back to the system turn", func() {
		s.Append(session.SpeakerUser, "how many contacts")
		s.Append(session.SpeakerAssistant, "Total Contacts: 5")
		Expect(s.History()).To(HaveLen(3))

		s.Clear()
		h := s.History()
		Expect(h).To(HaveLen(1))
		Expect(h[0].Role).To(Equal(session.SpeakerSystem))
	})

	It("keeps the system turn in front of the recent window", func() {
		for i := 0; i < 6; i++ {
			s.Append(session.SpeakerUser, "turn")
		}
		recent := s.Recent(2)
		Expect(recent).To(HaveLen(3))
		Expect(recent[0].Role).To(Equal(session.SpeakerSystem))
	})

	It("replaces the user wholesale and hands out copies", func() {
		u := &auth.UserContext{ID: 7, Role: auth.RoleUser, AllowedCategories: []string{"Client"}}
		s.SetUserContext(u)
		u.AllowedCategories[0] = "Vendor"
		Expect(s.User().AllowedCategories).To(Equal([]string{"Client"}))

		got := s.User()
		got.Role = auth.RoleAdmin
		Expect(s.User().Role).To(Equal(auth.RoleUser))
	})

	It("exposes the data snapshot", func() {
		s.SetContactsContext([]contact.Summary{{ID: "1", Name: "Ada"}})
		s.SetDashboardContext(dashboard.Stats{"totalUsers": 2})
		snap := s.Snapshot()
		Expect(snap.Contacts).To(HaveLen(1))
		Expect(snap.Users).To(BeNil())
		Expect(snap.Dashboard).To(HaveKey("totalUsers"))
	})

	It("swaps the whole snapshot at once", func() {
		generation := func(n int) responder.Snapshot {
			id := strconv.Itoa(n)
			return responder.Snapshot{
				Contacts:  []contact.Summary{{ID: id}},
				Users:     []user.Summary{{ID: int64(n)}},
				Dashboard: dashboard.Stats{"generation": id},
			}
		}
		s.ReplaceSnapshot(generation(0), time.Now())

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 1; n <= 500; n++ {
				s.ReplaceSnapshot(generation(n), time.Now())
			}
		}()

		mixed := 0
		for i := 0; i < 500; i++ {
			snap := s.Snapshot()
			id := snap.Contacts[0].ID
			if strconv.FormatInt(snap.Users[0].ID, 10) != id || snap.Dashboard["generation"] != id {
				mixed++
			}
		}
		wg.Wait()

		Expect(mixed).To(BeZero())
		Expect(s.Snapshot().Contacts[0].ID).To(Equal("500"))
	})
})

var _ = Describe("Voice", func() {
	var v *session.Voice

	BeforeEach(func() {
		v = session.NewVoice()
	})

	It("walks idle, listening, interpreting and back to idle", func() {
		Expect(v.Status().State).To(Equal(session.VoiceIdle))
		id, stopped := v.Start()
		Expect(stopped).To(BeEmpty())
		Expect(v.Status().State).To(Equal(session.VoiceListening))

		Expect(v.Interim(id, "open")).To(Succeed())
		Expect(v.Status().Interim).To(Equal("open"))
		Expect(v.Status().State).To(Equal(session.VoiceListening))

		done, err := v.Final(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Status().State).To(Equal(session.VoiceInterpreting))
		done()
		Expect(v.Status().State).To(Equal(session.VoiceIdle))
	})

	It("accepts a final transcript only once", func() {
		id, _ := v.Start()
		done, err := v.Final(id)
		Expect(err).NotTo(HaveOccurred())
		_, err = v.Final(id)
		Expect(err).To(MatchError(internal.ErrVoiceNotListening))
		done()
	})

	It("stops the previous capture when a new one starts", func() {
		first, _ := v.Start()
		second, stopped := v.Start()
		Expect(stopped).To(Equal(first))
		Expect(second).NotTo(Equal(first))
		Expect(v.Interim(first, "late")).To(MatchError(internal.ErrVoiceNotListening))
		Expect(v.Interim(second, "fresh")).To(Succeed())
	})

	It("rejects transcripts while idle", func() {
		Expect(v.Interim("nope", "hello")).To(MatchError(internal.ErrVoiceNotListening))
		Expect(v.Stop()).To(BeFalse())
	})
})

var _ = Describe("Registry", func() {
	It("creates a store per session id and reuses it", func() {
		r, err := session.NewRegistry(4, "system", slogger)
		Expect(err).NotTo(HaveOccurred())
		ctx := internal.ContextWithSessionID(context.Background(), "a")

		s1, err := r.Acquire(ctx, admin)
		Expect(err).NotTo(HaveOccurred())
		s2, err := r.Acquire(ctx, member)
		Expect(err).NotTo(HaveOccurred())
		Expect(s2).To(BeIdenticalTo(s1))
		Expect(s2.User().ID).To(Equal(member.ID))
	})

	It("requires a session id", func() {
		r, err := session.NewRegistry(4, "system", slogger)
		Expect(err).NotTo(HaveOccurred())
		_, err = r.Acquire(context.Background(), admin)
		Expect(err).To(MatchError(internal.ErrSessionNotFound))
	})

	It("evicts the least recently used session", func() {
		r, err := session.NewRegistry(2, "system", slogger)
		Expect(err).NotTo(HaveOccurred())
		for _, id := range []string{"a", "b", "c"} {
			_, err := r.Acquire(internal.ContextWithSessionID(context.Background(), id), admin)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(r.Len()).To(Equal(2))
		_, err = r.Get("a")
		Expect(err).To(MatchError(internal.ErrSessionNotFound))
		_, err = r.Get("c")
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Refresher", func() {
	var (
		contacts *fakeContacts
		users    *fakeUsers
		store    *session.Store
	)

	BeforeEach(func() {
		contacts = &fakeContacts{list: []contact.Summary{{ID: "1", Name: "Ada"}, {ID: "2", Name: "Bob"}}}
		users = &fakeUsers{list: []user.Summary{{ID: 1, Username: "admin", Role: auth.RoleAdmin}}}
		store = session.NewStore("s", "system")
	})

	It("loads contacts, users and dashboard for an admin", func() {
		store.SetUserContext(admin)
		r := session.NewRefresher(contacts, users, fakeDashboard{stats: dashboard.Stats{"totalUsers": 1}}, time.Second, slogger)

		summary, err := r.Refresh(context.Background(), store)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Contacts).To(Equal(2))
		Expect(summary.Users).To(Equal(1))
		Expect(summary.Dashboard).To(BeTrue())
		Expect(store.Snapshot().Users).To(HaveLen(1))
		Expect(store.RefreshedAt()).NotTo(BeZero())
	})

	It("skips the user list for non-admins", func() {
		store.SetUserContext(member)
		r := session.NewRefresher(contacts, users, nil, time.Second, slogger)

		_, err := r.Refresh(context.Background(), store)
		Expect(err).NotTo(HaveOccurred())
		Expect(users.calls.Load()).To(BeZero())
		Expect(store.Snapshot().Users).To(BeNil())
	})

	It("keeps the previous snapshot when a source fails", func() {
		store.SetUserContext(admin)
		store.SetContactsContext([]contact.Summary{{ID: "old"}})
		contacts.err = errors.New("connection refused")
		r := session.NewRefresher(contacts, users, nil, time.Second, slogger)

		_, err := r.Refresh(context.Background(), store)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeBackendUnavailable))
		Expect(store.Snapshot().Contacts).To(Equal([]contact.Summary{{ID: "old"}}))
	})
})
