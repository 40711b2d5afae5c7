package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/activity"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/category"
	"github.com/frahmantamala/crm-assistant/internal/command"
	"github.com/frahmantamala/crm-assistant/internal/core/events"
	"github.com/frahmantamala/crm-assistant/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	interpretRole       string
	interpretCategories []string
	interpretLogLevel   string
)

var interpretCmd = &cobra.Command{
	Use:   "interpret [utterance]",
	Short: "Interpret one utterance offline",
	Long: `Run an utterance through the command registry as a given role and print the
result together with the events the command bus recorded. No database is needed;
the default category list is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterpret(cmd.Context(), strings.Join(args, " "))
	},
}

type interpretOutput struct {
	Result  command.Result   `json:"result"`
	Error   string           `json:"error,omitempty"`
	Entries []activity.Entry `json:"events"`
}

func runInterpret(ctx context.Context, utterance string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.New(os.Stderr, interpretLogLevel, "text")

	role, ok := auth.ParseRole(interpretRole)
	if !ok {
		return fmt.Errorf("unknown role %q", interpretRole)
	}
	u := &auth.UserContext{ID: 1, Username: "cli", Role: role, AllowedCategories: interpretCategories}

	registry, err := command.NewRegistry(category.DefaultVocabulary())
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	audit := activity.NewLog(activity.DefaultCapacity, lg)
	audit.Subscribe(bus)

	interpreter := command.NewInterpreter(registry, command.NewEventDispatcher(bus), lg)
	ctx = internal.ContextWithSessionID(ctx, "cli")

	out := interpretOutput{}
	out.Result, err = interpreter.Interpret(ctx, utterance, u)
	if err != nil {
		out.Error = err.Error()
	}
	bus.Wait()
	out.Entries = audit.Recent(-1)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	interpretCmd.Flags().StringVar(&interpretRole, "role", string(auth.RoleUser), "role to interpret as (Admin, HR, User)")
	interpretCmd.Flags().StringSliceVar(&interpretCategories, "categories", nil, "allowed contact categories; empty means all")
	interpretCmd.Flags().StringVar(&interpretLogLevel, "log-level", "warn", "log level written to stderr")
}
