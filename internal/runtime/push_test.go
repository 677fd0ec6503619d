package runtime

import "testing"

func TestShouldPush(t *testing.T) {
	tests := []struct {
		name   string
		ctx    Context
		canary string
		force  bool
		want   bool
	}{
		{
			name:  "Force push",
			ctx:   Context{EventName: "pull_request", Ref: "refs/pull/1/merge"},
			force: true,
			want:  true,
		},
		{
			name: "Tag ref",
			ctx:  Context{EventName: "push", Ref: "refs/tags/v1.0.0", DefaultBranch: "main"},
			want: true,
		},
		{
			name: "Push to default branch",
			ctx:  Context{EventName: "push", Ref: "refs/heads/main", DefaultBranch: "main"},
			want: true,
		},
		{
			name: "Workflow dispatch on default branch",
			ctx:  Context{EventName: "workflow_dispatch", Ref: "refs/heads/main", DefaultBranch: "main"},
			want: false,
		},
		{
			name: "Push to feature branch",
			ctx:  Context{EventName: "push", Ref: "refs/heads/feature", DefaultBranch: "main"},
			want: false,
		},
		{
			name: "PR with canary label",
			ctx:  Context{EventName: "pull_request", Ref: "refs/pull/1/merge", Labels: []string{"canary"}},
			want: true,
		},
		{
			name:   "PR with custom canary label",
			ctx:    Context{EventName: "pull_request", Ref: "refs/pull/1/merge", Labels: []string{"preview"}},
			canary: "preview",
			want:   true,
		},
		{
			name: "PR without canary label",
			ctx:  Context{EventName: "pull_request", Ref: "refs/pull/1/merge", Labels: []string{"minor"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldPush(tt.ctx, tt.canary, tt.force, nil); got != tt.want {
				t.Errorf("ShouldPush() = %v; want %v", got, tt.want)
			}
		})
	}
}
