package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/command"
	"github.com/frahmantamala/crm-assistant/internal/session"
	"github.com/frahmantamala/crm-assistant/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingInterpreter struct {
	transcripts []string
}

func (c *countingInterpreter) Interpret(_ context.Context, transcript string, _ *auth.UserContext) (command.Result, error) {
	c.transcripts = append(c.transcripts, transcript)
	return command.Result{Success: true, Message: "Executing: Open the dashboard"}, nil
}

var _ = Describe("Session Handler", func() {
	var (
		handler     *session.Handler
		interpreter *countingInterpreter
		contacts    *fakeContacts
	)

	BeforeEach(func() {
		sessions, err := session.NewRegistry(8, "system", slogger)
		Expect(err).NotTo(HaveOccurred())
		contacts = &fakeContacts{}
		interpreter = &countingInterpreter{}
		handler = session.NewHandler(
			&transport.BaseHandler{Logger: slogger},
			sessions,
			session.NewRefresher(contacts, nil, nil, time.Second, slogger),
			interpreter,
		)
	})

	call := func(fn http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		ctx := auth.ContextWithUser(req.Context(), admin)
		ctx = internal.ContextWithSessionID(ctx, "sess-voice")
		rec := httptest.NewRecorder()
		fn(rec, req.WithContext(ctx))
		return rec
	}

	It("interprets only the final transcript", func() {
		rec := call(handler.VoiceStart, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var start session.VoiceStartResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &start)).To(Succeed())

		rec = call(handler.VoiceInterim, `{"captureId":"`+start.CaptureID+`","transcript":"go to"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(interpreter.transcripts).To(BeEmpty())

		rec = call(handler.VoiceFinal, `{"captureId":"`+start.CaptureID+`","transcript":"go to dashboard"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(interpreter.transcripts).To(Equal([]string{"go to dashboard"}))

		rec = call(handler.VoiceFinal, `{"captureId":"`+start.CaptureID+`","transcript":"go to dashboard"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(interpreter.transcripts).To(HaveLen(1))
	})

	It("records voice turns and clears history", func() {
		rec := call(handler.VoiceStart, "")
		var start session.VoiceStartResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &start)).To(Succeed())
		call(handler.VoiceFinal, `{"captureId":"`+start.CaptureID+`","transcript":"go to dashboard"}`)

		rec = call(handler.History, "")
		var history session.HistoryResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &history)).To(Succeed())
		Expect(history.Turns).To(HaveLen(3))

		rec = call(handler.ClearHistory, "")
		Expect(json.Unmarshal(rec.Body.Bytes(), &history)).To(Succeed())
		Expect(history.Turns).To(HaveLen(1))
	})

	It("refreshes the snapshot on request", func() {
		rec := call(handler.Refresh, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(contacts.calls.Load()).To(Equal(int32(1)))
	})
})
