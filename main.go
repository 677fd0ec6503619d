// gh-reusable main entrypoint
//
// One binary backs the reusable workflow steps: image facts (dockerfile,
// context, tags, push decision), docker buildx builds, semantic version
// bumps and raw GraphQL calls. Every subcommand reads its action inputs
// from INPUT_* and writes outputs to GITHUB_OUTPUT.
//
// Keep this file simple: build the command tree, run it, report failure.
// All the heavy lifting stays internal.

package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/mbround18/gh-reusable/internal/commands"
)

func main() {
	app := &commands.App{}
	if err := commands.NewRootCommand(app).Execute(); err != nil {
		log := app.Log
		if log == nil {
			// Setup failed before the logger existed.
			var lerr error
			if log, lerr = commands.NewLogger(false); lerr != nil {
				log = zap.NewExample()
			}
		}
		log.Error("Command failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	if app.Log != nil {
		_ = app.Log.Sync()
	}
}
