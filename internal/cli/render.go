package cli

import (
	"fmt"
	"os"

	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/rocketship-ai/loadplan/internal/props"
	"github.com/spf13/cobra"
)

// NewRenderCmd creates a new render command
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [plan-file]",
		Short: "Render a plan in normalized form",
		Long: `Render parses and builds a plan, then prints it with defaults filled in and
script files inlined. The output is itself a valid plan file.`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}
	cmd.Flags().StringP("output", "o", "", "Write the rendered plan to this file instead of stdout")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	plan, err := dsl.ParseFile(args[0])
	if err != nil {
		return err
	}

	store := props.New()
	store.Init(props.Defaults)
	built, err := plan.Build(store)
	if err != nil {
		return err
	}
	defer plan.Close(store)

	out, err := dsl.RenderYAML(built)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write rendered plan: %w", err)
	}
	Logger.Info("rendered plan", "plan", built.Name, "output", output)
	return nil
}
