package docker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mbround18/gh-reusable/internal/compose"
	"github.com/mbround18/gh-reusable/internal/runtime"
)

func TestPlanBuild(t *testing.T) {
	ws := t.TempDir()
	composeYAML := `
services:
  app:
    image: mbround18/app:dev
    build:
      context: ./app
      target: runtime
      args:
        RUST_VERSION: "1.80"
`
	if err := os.WriteFile(filepath.Join(ws, "docker-compose.yml"), []byte(composeYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		rc   runtime.Context
		in   FactsInput
		want Plan
	}{
		{
			name: "Default branch push with compose",
			rc:   runtime.Context{EventName: "push", Ref: "refs/heads/main", DefaultBranch: "main"},
			in: FactsInput{
				Image: "mbround18/app", Version: "v1.2.3", Registries: []string{"ghcr.io"},
				Dockerfile: "./Dockerfile", Context: ".", Workspace: ws, WithLatest: true,
			},
			want: Plan{
				Dockerfile: "./app/Dockerfile",
				Context:    "./app",
				Target:     "runtime",
				BuildArgs:  compose.Args{"RUST_VERSION": "1.80"},
				Tags: []string{
					"mbround18/app:v1.2.3", "ghcr.io/mbround18/app:v1.2.3",
					"mbround18/app:latest", "ghcr.io/mbround18/app:latest",
					"mbround18/app:v1.2", "ghcr.io/mbround18/app:v1.2",
					"mbround18/app:v1", "ghcr.io/mbround18/app:v1",
				},
				Push:       true,
			},
		},
		{
			name: "Canary pull request with target prefix",
			rc: runtime.Context{
				EventName: "pull_request", Ref: "refs/pull/5/merge", DefaultBranch: "main",
				PRNumber: 5, Labels: []string{"canary"},
			},
			in: FactsInput{
				Image: "mbround18/app", Version: "1.0.0", Workspace: ws,
				Target: "debug", PrependTarget: true, WithLatest: true,
			},
			want: Plan{
				Dockerfile: "./app/Dockerfile",
				Context:    "./app",
				Target:     "debug",
				BuildArgs:  compose.Args{"RUST_VERSION": "1.80"},
				Tags:       []string{"mbround18/app:debug-1.0.0", "mbround18/app:debug-pr-5"},
				Push:       true,
			},
		},
		{
			name: "Feature branch without compose match",
			rc:   runtime.Context{EventName: "push", Ref: "refs/heads/feature/x", DefaultBranch: "main"},
			in: FactsInput{
				Image: "other", Version: "sha-abc123", Dockerfile: "./Dockerfile", Context: ".", Workspace: ws,
			},
			want: Plan{
				Dockerfile: "./Dockerfile",
				Context:    ".",
				Tags:       []string{"other:sha-abc123", "other:feature-x"},
				Push:       false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanBuild(tt.rc, tt.in, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
