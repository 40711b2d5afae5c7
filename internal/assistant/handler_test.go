package assistant_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/assistant"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/session"
	"github.com/frahmantamala/crm-assistant/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Chat Handler", func() {
	var (
		handler  *assistant.Handler
		sessions *session.Registry
	)

	BeforeEach(func() {
		var err error
		sessions, err = session.NewRegistry(4, assistant.DefaultSystemPrompt, slogger)
		Expect(err).NotTo(HaveOccurred())
		handler = assistant.NewHandler(&transport.BaseHandler{Logger: slogger}, sessions, newService(nil, assistant.Config{}))
	})

	post := func(u *auth.UserContext, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
		c := req.Context()
		if u != nil {
			c = auth.ContextWithUser(c, u)
		}
		c = internal.ContextWithSessionID(c, "sess-chat")
		rec := httptest.NewRecorder()
		handler.Chat(rec, req.WithContext(c))
		return rec
	}

	It("answers and keeps the conversation in the session", func() {
		rec := post(admin, `{"message":"help"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp assistant.ChatResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.SessionID).To(Equal("sess-chat"))
		Expect(resp.Source).To(Equal(assistant.SourceLocal))
		Expect(resp.Intent).To(Equal("help"))
		Expect(resp.Actions).NotTo(BeEmpty())

		store, err := sessions.Get("sess-chat")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.History()).To(HaveLen(3))
	})

	It("rejects an empty message", func() {
		rec := post(admin, `{"message":"   "}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("requires a signed-in user", func() {
		rec := post(nil, `{"message":"help"}`)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
