package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/rocketship-ai/loadplan/internal/cli"
	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/spf13/cobra/doc"
)

func main() {
	out := flag.String("out", "./docs/reference", "Directory the reference documentation is written to")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}

	// Get the root command
	rootCmd := cli.NewRootCmd()
	rootCmd.DisableAutoGenTag = true

	// Generate markdown documentation
	if err := doc.GenMarkdownTree(rootCmd, *out); err != nil {
		log.Fatal(err)
	}

	// Publish the plan schema next to the command reference for editor integrations
	schemaPath := filepath.Join(*out, "plan.schema.json")
	if err := os.WriteFile(schemaPath, []byte(dsl.GetJSONSchema()), 0o644); err != nil {
		log.Fatal(err)
	}
}
