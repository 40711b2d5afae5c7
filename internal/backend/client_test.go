package backend_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/backend"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBackend(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Backend Client Suite")
}

var _ = Describe("Client", func() {
	var (
		server *httptest.Server
		client *backend.Client
		logger *slog.Logger
		auth   string
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mux := http.NewServeMux()
		mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"contacts":[
				{"id":1,"first_name":"Ada","last_name":"L","email":[{"value":"a@x.io","is_primary":false},{"value":"ada@x.io","is_primary":true}],"categories":["Client"],"lead_score":71.2},
				{"id":"c-2","name":"Bob","phone":"555","category":"Vendor","leadScore":140}
			]}`))
		})
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id":1,"username":"root","role":"Admin"}]`))
		})
		mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"totalUsers":4,"recentActivities":[]}`))
		})
		mux.HandleFunc("/broken/dashboard", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		server = httptest.NewServer(mux)
		client = backend.NewClient(backend.Config{BaseURL: server.URL + "/", APIKey: "svc-key", Timeout: time.Second}, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	It("normalises the contact list and sends the api key", func() {
		contacts, err := client.ListContacts(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(auth).To(Equal("Bearer svc-key"))
		Expect(contacts).To(HaveLen(2))
		Expect(contacts[0].Name).To(Equal("Ada L"))
		Expect(contacts[0].Email).To(Equal("ada@x.io"))
		Expect(*contacts[0].LeadScore).To(Equal(71))
		Expect(contacts[1].ID).To(Equal("c-2"))
		Expect(contacts[1].Categories).To(Equal([]string{"Vendor"}))
		Expect(*contacts[1].LeadScore).To(Equal(100))
	})

	It("fetches users and dashboard statistics", func() {
		users, err := client.ListUsers(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(users).To(HaveLen(1))

		stats, err := client.GetDashboard(context.Background())
		Expect(err).NotTo(HaveOccurred())
		total, _ := stats.TotalUsers()
		Expect(total).To(Equal(4))
	})

	It("reports an unreachable backend as BACKEND_UNAVAILABLE", func() {
		server.Close()
		_, err := client.ListContacts(context.Background())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeBackendUnavailable))
	})

	It("reports a non-200 status as BACKEND_UNAVAILABLE", func() {
		broken := backend.NewClient(backend.Config{BaseURL: server.URL + "/broken"}, logger)
		_, err := broken.GetDashboard(context.Background())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeBackendUnavailable))
		Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
	})
})
