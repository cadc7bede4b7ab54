package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates a new validate command
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file_or_directory]",
		Short: "Validate plan files against the JSON schema",
		Long: `Validate one or more plan files against the JSON schema.
This command checks plan syntax, structure and referenced script files without running anything.

Examples:
  loadplan validate plan.yaml                  # Validate a single file
  loadplan validate ./plans/                   # Validate all YAML files in a directory
  loadplan validate smoke.yaml soak.yaml       # Validate multiple files`,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("please specify at least one file or directory to validate")
	}

	var files []string
	totalValid := 0
	totalInvalid := 0

	// Collect all files to validate
	for _, arg := range args {
		stat, err := os.Stat(arg)
		if err != nil {
			Logger.Error("failed to access path", "path", arg, "error", err)
			totalInvalid++
			continue
		}

		if stat.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && (filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml") {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				Logger.Error("failed to scan directory", "path", arg, "error", err)
				totalInvalid++
				continue
			}
		} else {
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no YAML files found to validate")
	}

	Logger.Info("validating files", "count", len(files))

	for _, file := range files {
		if err := validateFile(file); err != nil {
			Logger.Error("validation failed", "file", file, "error", err)
			totalInvalid++
		} else {
			Logger.Info("validation passed", "file", file)
			totalValid++
		}
	}

	Logger.Info("validation complete", "valid", totalValid, "invalid", totalInvalid, "total", len(files))

	if totalInvalid > 0 {
		return fmt.Errorf("validation failed for %d file(s)", totalInvalid)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ All %d file(s) passed validation\n", totalValid)
	return nil
}

func validateFile(filePath string) error {
	plan, err := dsl.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	Logger.Debug("file details",
		"name", plan.Name,
		"threads", plan.Threads,
		"iterations", plan.Iterations,
		"elements", len(plan.Elements),
	)

	return nil
}
