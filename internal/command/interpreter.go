package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/core/action"
	"github.com/frahmantamala/crm-assistant/internal/core/events"
)

// Dispatch is a resolved command handed to the host for execution.
type Dispatch struct {
	UserID     int64
	SessionID  string
	Command    string
	Category   Category
	Action     action.Action
	Transcript string
}

// Denial records a command refused by a permission check.
type Denial struct {
	UserID     int64
	SessionID  string
	Command    string
	Reason     string
	Transcript string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, d Dispatch) error
	Denied(ctx context.Context, d Denial)
}

type Interpreter struct {
	registry   *Registry
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewInterpreter(registry *Registry, dispatcher Dispatcher, logger *slog.Logger) *Interpreter {
	return &Interpreter{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (i *Interpreter) Registry() *Registry {
	return i.registry
}

// Interpret resolves transcript against the registry and runs the first match
// under its permission guard. An unmatched transcript is not an error. A
// permission denial is returned as a PERMISSION_DENIED AppError alongside a
// failed Result carrying the reason. On success the action is dispatched
// exactly once before returning.
func (i *Interpreter) Interpret(ctx context.Context, transcript string, u *auth.UserContext) (Result, error) {
	normalized := Normalize(transcript)
	d, m, ok := i.registry.Resolve(normalized)
	if !ok {
		i.logger.Debug("command not recognized", "transcript", normalized)
		return Result{Success: false, Message: MessageNotRecognized}, nil
	}

	env := Env{User: u, Categories: i.registry.Categories()}
	act, err := i.registry.handler(d.Name)(env, m)
	if err != nil {
		if internal.IsPermissionDenied(err) {
			appErr, _ := internal.IsAppError(err)
			i.logger.Warn("command denied",
				"rule", d.Name,
				"user_id", userID(u),
				"role", auth.RoleLabel(u),
				"reason", appErr.Message)
			if i.dispatcher != nil {
				i.dispatcher.Denied(ctx, Denial{
					UserID:     userID(u),
					SessionID:  internal.SessionIDFromContext(ctx),
					Command:    d.Name,
					Reason:     appErr.Message,
					Transcript: normalized,
				})
			}
			return Result{Success: false, Message: appErr.Message, Category: d.Category, Command: d.Name}, err
		}
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeValidation {
			return Result{Success: false, Message: appErr.Message, Category: d.Category, Command: d.Name}, nil
		}
		return Result{}, internal.NewInternalError(fmt.Sprintf("command %s failed", d.Name), err)
	}

	if i.dispatcher != nil {
		err := i.dispatcher.Dispatch(ctx, Dispatch{
			UserID:     userID(u),
			SessionID:  internal.SessionIDFromContext(ctx),
			Command:    d.Name,
			Category:   d.Category,
			Action:     act,
			Transcript: normalized,
		})
		if err != nil {
			i.logger.Error("command dispatch failed", "command", d.Name, "error", err)
			return Result{}, internal.NewInternalError("failed to dispatch command", err)
		}
	}

	i.logger.Debug("command matched", "rule", d.Name, "user_id", userID(u))
	return Result{
		Success:  true,
		Message:  executingPrefix + d.Description,
		Category: d.Category,
		Command:  d.Name,
		Action:   &act,
	}, nil
}

func userID(u *auth.UserContext) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

// EventDispatcher publishes dispatched commands synchronously so a failing
// subscriber fails the command, and denials asynchronously.
type EventDispatcher struct {
	bus *events.EventBus
}

func NewEventDispatcher(bus *events.EventBus) *EventDispatcher {
	return &EventDispatcher{bus: bus}
}

func (e *EventDispatcher) Dispatch(ctx context.Context, d Dispatch) error {
	return e.bus.PublishSync(ctx, events.NewCommandDispatchedEvent(
		d.UserID, d.SessionID, d.Command, string(d.Category),
		string(d.Action.Type), d.Action.Path, d.Action.Params, d.Transcript))
}

func (e *EventDispatcher) Denied(ctx context.Context, d Denial) {
	_ = e.bus.Publish(ctx, events.NewPermissionDeniedEvent(d.UserID, d.SessionID, d.Command, d.Reason, d.Transcript))
}
