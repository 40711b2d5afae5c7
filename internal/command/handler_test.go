package command_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/command"
	"github.com/frahmantamala/crm-assistant/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Command Handler", func() {
	var handler *command.Handler

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		registry, err := command.NewRegistry(nil)
		Expect(err).NotTo(HaveOccurred())
		handler = command.NewHandler(&transport.BaseHandler{Logger: slogger}, command.NewInterpreter(registry, nil, slogger))
	})

	interpret := func(u *auth.UserContext, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/commands/interpret", strings.NewReader(body))
		if u != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		handler.Interpret(rec, req)
		return rec
	}

	It("returns the action for a recognized command", func() {
		rec := interpret(adminUser, `{"transcript":"open admin"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp command.InterpretResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeTrue())
		Expect(resp.Action.Path).To(Equal("/admin/users"))
	})

	It("answers a denial with 403 and the reason", func() {
		rec := interpret(clientUser, `{"transcript":"show marketing contacts"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("PERMISSION_DENIED"))
		Expect(rec.Body.String()).To(ContainSubstring("you only have access to: Client"))
	})

	It("answers unmatched input with 200 and success false", func() {
		rec := interpret(adminUser, `{"transcript":"hum a tune"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(command.MessageNotRecognized))
	})

	It("rejects empty transcripts", func() {
		rec := interpret(adminUser, `{"transcript":"   "}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("requires an authenticated user", func() {
		rec := interpret(nil, `{"transcript":"open admin"}`)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("lists grouped commands for the caller", func() {
		req := httptest.NewRequest(http.MethodGet, "/commands", nil)
		req = req.WithContext(auth.ContextWithUser(req.Context(), clientUser))
		rec := httptest.NewRecorder()
		handler.ListCommands(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp command.ListResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Groups).NotTo(BeEmpty())
		for _, g := range resp.Groups {
			Expect(g.Group).NotTo(Equal(command.GroupAdmin))
		}
	})
})
