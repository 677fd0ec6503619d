package version

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeLabels struct {
	pr        []string
	prErr     error
	commit    []string
	commitOK  bool
	commitErr error

	prCalls, commitCalls int
}

func (f *fakeLabels) Labels(_ context.Context, _ int) ([]string, error) {
	f.prCalls++
	return f.pr, f.prErr
}

func (f *fakeLabels) CommitLabels(_ context.Context, _ string) ([]string, bool, error) {
	f.commitCalls++
	return f.commit, f.commitOK, f.commitErr
}

type fakeTags struct {
	tags []string
	err  error
}

func (f fakeTags) ListTags(context.Context) ([]string, error) { return f.tags, f.err }

func TestDetectIncrement(t *testing.T) {
	tests := []struct {
		name            string
		in              DetectInput
		src             *fakeLabels
		want            VersionType
		wantPRCalls     int
		wantCommitCalls int
		expectErr       bool
	}{
		{
			name: "Explicit increment wins",
			in:   DetectInput{Explicit: "Minor", IsPR: true, PRNumber: 4},
			src:  &fakeLabels{pr: []string{"major"}},
			want: Minor,
		},
		{
			name:      "Invalid explicit increment",
			in:        DetectInput{Explicit: "huge"},
			src:       &fakeLabels{},
			expectErr: true,
		},
		{
			name:        "PR labels",
			in:          DetectInput{IsPR: true, PRNumber: 4, SHA: "abc"},
			src:         &fakeLabels{pr: []string{"docs", "major"}},
			want:        Major,
			wantPRCalls: 1,
		},
		{
			name:        "PR lookup failure defaults to patch",
			in:          DetectInput{IsPR: true, PRNumber: 4},
			src:         &fakeLabels{prErr: errors.New("boom")},
			want:        Patch,
			wantPRCalls: 1,
		},
		{
			name:            "Commit associated PR labels",
			in:              DetectInput{SHA: "abc"},
			src:             &fakeLabels{commit: []string{"minor"}, commitOK: true},
			want:            Minor,
			wantCommitCalls: 1,
		},
		{
			name:            "Commit without PR",
			in:              DetectInput{SHA: "abc"},
			src:             &fakeLabels{},
			want:            Patch,
			wantCommitCalls: 1,
		},
		{
			name:            "Commit lookup failure defaults to patch",
			in:              DetectInput{SHA: "abc"},
			src:             &fakeLabels{commitErr: errors.New("boom")},
			want:            Patch,
			wantCommitCalls: 1,
		},
		{
			name: "Nothing to look up",
			in:   DetectInput{},
			src:  &fakeLabels{},
			want: Patch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectIncrement(context.Background(), tt.in, tt.src, DefaultLabels, nil)
			if (err != nil) != tt.expectErr {
				t.Fatalf("err = %v, expectErr %v", err, tt.expectErr)
			}
			if tt.expectErr {
				return
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if tt.src.prCalls != tt.wantPRCalls || tt.src.commitCalls != tt.wantCommitCalls {
				t.Errorf("unexpected lookups: pr=%d commit=%d", tt.src.prCalls, tt.src.commitCalls)
			}
		})
	}
}

func TestDetectIncrementWarnsOnLookupFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &fakeLabels{prErr: errors.New("boom")}

	if _, err := DetectIncrement(context.Background(), DetectInput{IsPR: true, PRNumber: 9}, src, DefaultLabels, zap.New(core)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("Failed to get PR labels").Len() != 1 {
		t.Errorf("expected one warning, got %v", logs.All())
	}
}

func TestDetectIncrementWithoutSource(t *testing.T) {
	got, err := DetectIncrement(context.Background(), DetectInput{IsPR: true, PRNumber: 1}, nil, DefaultLabels, nil)
	if err != nil || got != Patch {
		t.Errorf("expected Patch, got %s (%v)", got, err)
	}
}

func TestResolveLastTag(t *testing.T) {
	tests := []struct {
		name       string
		ref        string
		base       string
		prefix     string
		src        TagSource
		wantTag    string
		wantPrefix string
		expectErr  bool
	}{
		{
			name: "Tag ref", ref: "refs/tags/v2.0.0", src: fakeTags{err: errors.New("unused")},
			wantTag: "v2.0.0",
		},
		{
			name: "Base wins over repository tags", ref: "refs/heads/main", base: "v1.0.0", prefix: "v",
			src: fakeTags{tags: []string{"v9.9.9"}}, wantTag: "v1.0.0", wantPrefix: "v",
		},
		{
			name: "Highest repository tag", ref: "refs/heads/main",
			src:     fakeTags{tags: []string{"v1.2.3", "v1.10.0", "v1.9.9"}},
			wantTag: "v1.10.0", wantPrefix: "v",
		},
		{
			name: "No tags", ref: "refs/heads/main", src: fakeTags{},
			wantTag: "v0.0.0", wantPrefix: "v",
		},
		{
			name: "Listing fails", ref: "refs/heads/main", src: fakeTags{err: errors.New("boom")},
			expectErr: true,
		},
		{
			name: "No source and no base", ref: "refs/heads/main", expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, prefix, err := ResolveLastTag(context.Background(), tt.ref, tt.base, tt.prefix, tt.src, nil)
			if (err != nil) != tt.expectErr {
				t.Fatalf("err = %v, expectErr %v", err, tt.expectErr)
			}
			if tag != tt.wantTag || prefix != tt.wantPrefix {
				t.Errorf("expected (%q, %q), got (%q, %q)", tt.wantTag, tt.wantPrefix, tag, prefix)
			}
		})
	}
}

func TestNextForRef(t *testing.T) {
	got, err := NextForRef("refs/tags/v3.0.0", "v2.9.0", "v", Minor, false, "")
	if err != nil || got != "v3.0.0" {
		t.Errorf("expected tag ref to win, got %q (%v)", got, err)
	}

	got, err = NextForRef("refs/heads/main", "v2.9.0", "v", Minor, false, "")
	if err != nil || got != "v2.10.0" {
		t.Errorf("expected v2.10.0, got %q (%v)", got, err)
	}
}
