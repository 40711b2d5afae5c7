package command_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/category"
	"github.com/frahmantamala/crm-assistant/internal/command"
	"github.com/frahmantamala/crm-assistant/internal/core/action"
	"github.com/frahmantamala/crm-assistant/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingDispatcher struct {
	mu         sync.Mutex
	dispatched []command.Dispatch
	denied     []command.Denial
	err        error
}

func (r *recordingDispatcher) Dispatch(_ context.Context, d command.Dispatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched = append(r.dispatched, d)
	return r.err
}

func (r *recordingDispatcher) Denied(_ context.Context, d command.Denial) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied = append(r.denied, d)
}

var _ = Describe("Interpreter", func() {
	var (
		dispatcher  *recordingDispatcher
		interpreter *command.Interpreter
		ctx         context.Context
		slogger     *slog.Logger
	)

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		registry, err := command.NewRegistry(category.DefaultVocabulary())
		Expect(err).NotTo(HaveOccurred())
		dispatcher = &recordingDispatcher{}
		interpreter = command.NewInterpreter(registry, dispatcher, slogger)
		ctx = internal.ContextWithSessionID(context.Background(), "sess-1")
	})

	It("denies a restricted user a category outside their set and names the allowed one", func() {
		res, err := interpreter.Interpret(ctx, "show marketing contacts", clientUser)
		Expect(internal.IsPermissionDenied(err)).To(BeTrue())
		Expect(res.Success).To(BeFalse())
		Expect(res.Action).To(BeNil())
		Expect(res.Message).To(ContainSubstring("Client"))
		Expect(res.Message).To(ContainSubstring("Marketing"))
		Expect(dispatcher.dispatched).To(BeEmpty())
		Expect(dispatcher.denied).To(HaveLen(1))
		Expect(dispatcher.denied[0].Command).To(Equal("filter.category"))
		Expect(dispatcher.denied[0].SessionID).To(Equal("sess-1"))
	})

	It("opens the contact list for show my contacts", func() {
		res, err := interpreter.Interpret(ctx, "Show my contacts", clientUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Success).To(BeTrue())
		Expect(res.Command).To(Equal("nav.contacts"))
		Expect(res.Action.Path).To(Equal("/contacts"))
		Expect(dispatcher.dispatched).To(HaveLen(1))
	})

	It("navigates an admin to user management", func() {
		res, err := interpreter.Interpret(ctx, "Open admin", adminUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Success).To(BeTrue())
		Expect(res.Message).To(Equal("Executing: Open user management"))
		Expect(res.Category).To(Equal(command.CategoryAdmin))
		Expect(res.Action).NotTo(BeNil())
		Expect(res.Action.Type).To(Equal(action.TypeNavigate))
		Expect(res.Action.Path).To(Equal("/admin/users"))
	})

	It("refuses admin commands to non-admins instead of ignoring them", func() {
		res, err := interpreter.Interpret(ctx, "open admin", clientUser)
		Expect(internal.IsPermissionDenied(err)).To(BeTrue())
		Expect(res.Message).To(Equal("your role (User) cannot access user management"))
		Expect(dispatcher.dispatched).To(BeEmpty())
	})

	It("reports unmatched input as not recognized without an error", func() {
		res, err := interpreter.Interpret(ctx, "sing me a song", adminUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(command.Result{Success: false, Message: command.MessageNotRecognized}))
		Expect(dispatcher.dispatched).To(BeEmpty())
		Expect(dispatcher.denied).To(BeEmpty())
	})

	It("dispatches exactly once per successful match", func() {
		res, err := interpreter.Interpret(ctx, "show client contacts", clientUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Success).To(BeTrue())
		Expect(dispatcher.dispatched).To(HaveLen(1))
		d := dispatcher.dispatched[0]
		Expect(d.Command).To(Equal("filter.category"))
		Expect(d.Action.Params).To(HaveKeyWithValue("category", "Client"))
		Expect(d.UserID).To(Equal(clientUser.ID))
	})

	It("turns an unknown category into a failed result without dispatch", func() {
		res, err := interpreter.Interpret(ctx, "show wizard contacts", adminUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Success).To(BeFalse())
		Expect(res.Message).To(ContainSubstring("not a recognized category"))
		Expect(dispatcher.dispatched).To(BeEmpty())
	})

	It("honours explicit false permission flags and leaves unspecified ones open", func() {
		readOnly := &auth.UserContext{
			ID: 3, Role: auth.RoleHR,
			Permissions: &auth.Permissions{Contact: &auth.CRUDPermissions{Create: auth.Bool(false)}},
		}
		res, err := interpreter.Interpret(ctx, "add contact", readOnly)
		Expect(internal.IsPermissionDenied(err)).To(BeTrue())
		Expect(res.Message).To(Equal("your role (HR) cannot create contacts"))

		res, err = interpreter.Interpret(ctx, "show contacts", readOnly)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Action.Path).To(Equal("/contacts"))
	})

	It("gates feature commands on feature flags", func() {
		noExport := &auth.UserContext{
			ID: 4, Role: auth.RoleUser,
			Permissions: &auth.Permissions{CRMFeatures: &auth.FeaturePermissions{ExportContacts: auth.Bool(false)}},
		}
		_, err := interpreter.Interpret(ctx, "export contacts", noExport)
		Expect(internal.IsPermissionDenied(err)).To(BeTrue())

		res, err := interpreter.Interpret(ctx, "export to excel", adminUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Action.Params).To(HaveKeyWithValue("format", "xlsx"))
	})

	It("passes captured arguments into actions", func() {
		res, err := interpreter.Interpret(ctx, "sort contacts by lead score", adminUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Action.Params).To(Equal(map[string]string{"field": "lead_score", "direction": "desc"}))

		res, err = interpreter.Interpret(ctx, "remind me to call Ada tomorrow", adminUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Action.Params).To(HaveKeyWithValue("title", "call ada tomorrow"))
	})

	It("fails the command when dispatch fails", func() {
		dispatcher.err = errors.New("host unavailable")
		res, err := interpreter.Interpret(ctx, "go to dashboard", adminUser)
		Expect(err).To(HaveOccurred())
		Expect(res.Success).To(BeFalse())
	})

	It("denies everything to a missing user", func() {
		_, err := interpreter.Interpret(ctx, "show contacts", nil)
		Expect(internal.IsPermissionDenied(err)).To(BeTrue())
	})

	Describe("EventDispatcher", func() {
		It("publishes dispatched commands on the bus", func() {
			bus := events.NewEventBus(slogger)
			var got *events.CommandDispatchedEvent
			bus.Subscribe(events.EventTypeCommandDispatched, func(_ context.Context, e events.Event) error {
				got = e.(*events.CommandDispatchedEvent)
				return nil
			})
			registry, err := command.NewRegistry(nil)
			Expect(err).NotTo(HaveOccurred())
			withBus := command.NewInterpreter(registry, command.NewEventDispatcher(bus), slogger)

			_, err = withBus.Interpret(ctx, "go to settings", adminUser)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.Command).To(Equal("nav.settings"))
			Expect(got.Path).To(Equal("/settings"))
			Expect(got.SessionID).To(Equal("sess-1"))
		})

		It("fails the command when a subscriber rejects it", func() {
			bus := events.NewEventBus(slogger)
			bus.Subscribe(events.EventTypeCommandDispatched, func(context.Context, events.Event) error {
				return errors.New("rejected")
			})
			registry, err := command.NewRegistry(nil)
			Expect(err).NotTo(HaveOccurred())
			withBus := command.NewInterpreter(registry, command.NewEventDispatcher(bus), slogger)

			_, err = withBus.Interpret(ctx, "go to settings", adminUser)
			Expect(err).To(HaveOccurred())
		})
	})
})
