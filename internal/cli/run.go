package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/rocketship-ai/loadplan/internal/interpreter"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
	"github.com/rocketship-ai/loadplan/internal/props"
	"github.com/spf13/cobra"
)

// NewRunCmd creates a new run command
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [plan-file]",
		Short: "Run a load plan",
		Long: `Run a load plan in this process.
The plan file should be a YAML file containing the plan definition. Runtime properties are
loaded from --props and LOADPLAN_PROP_* environment variables before the plan is built.`,
		Args: cobra.ExactArgs(1),
		RunE: runPlan,
	}

	cmd.Flags().String("props", "", "YAML properties file loaded into the shared property store")
	cmd.Flags().String("mode", runtime.ModeEmbedded.String(), "Execution mode: embedded or remote")
	cmd.Flags().Int("threads", 0, "Override the number of virtual users")
	cmd.Flags().Int("iterations", 0, "Override the iterations per virtual user")
	cmd.Flags().Duration("timeout", 0, "Stop the run after this long (0 means no limit)")

	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	propsFile, _ := cmd.Flags().GetString("props")
	modeName, _ := cmd.Flags().GetString("mode")
	threads, _ := cmd.Flags().GetInt("threads")
	iterations, _ := cmd.Flags().GetInt("iterations")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	mode, err := runtime.ParseMode(modeName)
	if err != nil {
		return err
	}

	if err := props.Shared.Load(propsFile); err != nil {
		return err
	}

	plan, err := dsl.ParseFile(args[0])
	if err != nil {
		return err
	}
	if threads > 0 {
		plan.WithThreads(threads)
	}
	if iterations > 0 {
		plan.WithIterations(iterations)
	}

	built, err := plan.Build(props.Shared)
	if err != nil {
		return err
	}
	defer plan.Close(props.Shared)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	stats, runErr := interpreter.Run(ctx, built, interpreter.Options{
		Mode:   mode,
		Store:  props.Shared,
		Logger: Logger,
	})
	if stats != nil {
		printSummary(cmd.OutOrStdout(), built, stats)
	}
	if runErr != nil {
		return runErr
	}

	samples, failures := stats.Totals()
	if errs := len(stats.Errors()); failures > 0 || errs > 0 {
		return fmt.Errorf("run finished with %d failed sample(s) of %d and %d element error(s)", failures, samples, errs)
	}
	return nil
}

// printSummary prints per-label results followed by totals
func printSummary(w io.Writer, plan *dsl.BuiltPlan, stats *interpreter.Stats) {
	_, _ = fmt.Fprintf(w, "\n=== Summary: %s (%s) ===\n", plan.Name, stats.Mode)
	_, _ = fmt.Fprintf(w, "Run ID: %s\n", stats.RunID)
	_, _ = fmt.Fprintf(w, "Duration: %s\n\n", stats.Duration().Round(time.Millisecond))

	for _, label := range stats.Labels() {
		ls := stats.Label(label)
		mark := color.GreenString("✓")
		if ls.Failures > 0 {
			mark = color.RedString("✗")
		}
		_, _ = fmt.Fprintf(w, "%s %-30s samples=%d failures=%d avg=%s\n",
			mark, label, ls.Samples, ls.Failures, ls.Average().Round(time.Microsecond))
	}

	samples, failures := stats.Totals()
	_, _ = fmt.Fprintf(w, "\nTotal Samples: %d\n", samples)
	_, _ = fmt.Fprintf(w, "%s Passed Samples: %d\n", color.GreenString("✓"), samples-failures)
	_, _ = fmt.Fprintf(w, "%s Failed Samples: %d\n", color.RedString("✗"), failures)

	errs := stats.Errors()
	if len(errs) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", color.New(color.FgRed, color.Bold).Sprintf("Element errors: %d", len(errs)))
	for _, e := range errs {
		_, _ = fmt.Fprintf(w, "  %s\n", color.RedString(e.Error()))
	}
}
