package main

import (
	"context"
	"fmt"
	"log"

	"github.com/mbround18/gh-reusable/internal/version"
	"github.com/mbround18/gh-reusable/pkg/github"
)

// Needs GITHUB_TOKEN and GITHUB_REPOSITORY=owner/name.
func main() {
	client, err := github.NewClientFromEnv("")
	if err != nil {
		log.Fatalf("[github] init failed: %v", err)
	}

	tags, err := client.Tags.ListTags(context.Background())
	if err != nil {
		log.Fatalf("[github] list tags failed: %v", err)
	}

	// (Optional) Show the latest semantic tag in the repo
	latest, prefix := version.LatestTag(tags, "")
	fmt.Printf("latest tag: %s (prefix %q)\n", latest, prefix)

	// Choose a bump. Use the enum, or parse a string if you prefer.
	bump := version.Patch
	// bump, err = version.ParseVersionType("minor")

	next, err := version.Next(latest, prefix, bump, false, "")
	if err != nil {
		log.Fatalf("failed to get next version: %v", err)
	}
	fmt.Printf("current=%s next=%s (bump=%s)\n", latest, next, bump)
}
