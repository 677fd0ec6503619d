package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const fallbackDefaultBranch = "main"

// Context captures the GitHub Actions state a run depends on.
type Context struct {
	EventName     string
	Ref           string
	SHA           string
	Repository    string // owner/name
	Workspace     string
	DefaultBranch string

	PRNumber int
	Labels   []string

	ServerURL  string
	RunID      string
	RunAttempt string
	RunnerTemp string
}

// event is the subset of the webhook payload we read from GITHUB_EVENT_PATH.
type event struct {
	PullRequest *struct {
		Number int     `json:"number"`
		Labels []label `json:"labels"`
	} `json:"pull_request"`
	Repository struct {
		DefaultBranch string `json:"default_branch"`
	} `json:"repository"`
}

type label struct {
	Name string `json:"name"`
}

var pullRef = regexp.MustCompile(`^refs/pull/(\d+)/`)

// LoadContext reads the GITHUB_* environment and the event payload.
// A missing or unreadable payload is logged and the context keeps its defaults.
func LoadContext(log *zap.Logger) Context {
	if log == nil {
		log = zap.NewNop()
	}

	c := Context{
		EventName:  os.Getenv("GITHUB_EVENT_NAME"),
		Ref:        os.Getenv("GITHUB_REF"),
		SHA:        os.Getenv("GITHUB_SHA"),
		Repository: os.Getenv("GITHUB_REPOSITORY"),
		Workspace:  os.Getenv("GITHUB_WORKSPACE"),
		ServerURL:  firstNonEmpty(os.Getenv("GITHUB_SERVER_URL"), "https://github.com"),
		RunID:      os.Getenv("GITHUB_RUN_ID"),
		RunAttempt: os.Getenv("GITHUB_RUN_ATTEMPT"),
		RunnerTemp: firstNonEmpty(os.Getenv("RUNNER_TEMP"), os.TempDir()),
	}

	ev, err := readEvent(os.Getenv("GITHUB_EVENT_PATH"))
	if err != nil {
		log.Warn("Failed to load event data", zap.Error(err))
	}

	c.DefaultBranch = firstNonEmpty(
		ev.Repository.DefaultBranch,
		os.Getenv("GITHUB_DEFAULT_BRANCH"),
		fallbackDefaultBranch,
	)

	if c.IsPullRequest() {
		if ev.PullRequest != nil {
			c.PRNumber = ev.PullRequest.Number
			c.Labels = lo.Map(ev.PullRequest.Labels, func(l label, _ int) string { return l.Name })
		}
		if c.PRNumber == 0 {
			if m := pullRef.FindStringSubmatch(c.Ref); m != nil {
				c.PRNumber, _ = strconv.Atoi(m[1])
			}
		}
	}
	return c
}

func readEvent(path string) (event, error) {
	var ev event
	if strings.TrimSpace(path) == "" {
		return ev, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ev, nil
		}
		return ev, errors.Wrapf(err, "reading event payload %s", path)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return event{}, errors.Wrapf(err, "parsing event payload %s", path)
	}
	return ev, nil
}

// IsPullRequest covers pull_request and pull_request_target events.
func (c Context) IsPullRequest() bool {
	return strings.HasPrefix(c.EventName, "pull_request")
}

// IsTag reports whether the run was triggered for a tag ref.
func (c Context) IsTag() bool {
	return strings.HasPrefix(c.Ref, "refs/tags/")
}

// TagName returns the tag of a tag ref, or "".
func (c Context) TagName() string {
	if !c.IsTag() {
		return ""
	}
	return strings.TrimPrefix(c.Ref, "refs/tags/")
}

// IsDefaultBranch reports whether Ref is the repository's default branch.
func (c Context) IsDefaultBranch() bool {
	return c.DefaultBranch != "" && c.Ref == "refs/heads/"+c.DefaultBranch
}

// BranchName is the label used for branch tags:
// "pr-<n>" for pull requests, the branch for refs/heads/*, "" otherwise.
func (c Context) BranchName() string {
	switch {
	case c.IsPullRequest():
		if c.PRNumber > 0 {
			return fmt.Sprintf("pr-%d", c.PRNumber)
		}
		return ""
	case strings.HasPrefix(c.Ref, "refs/heads/"):
		return strings.TrimPrefix(c.Ref, "refs/heads/")
	default:
		return ""
	}
}

// HasLabel reports whether the pull request carries the named label.
func (c Context) HasLabel(name string) bool {
	return name != "" && lo.Contains(c.Labels, name)
}

// Owner and Repo split GITHUB_REPOSITORY.
func (c Context) Owner() string {
	owner, _, _ := strings.Cut(c.Repository, "/")
	return owner
}

func (c Context) Repo() string {
	_, repo, _ := strings.Cut(c.Repository, "/")
	return repo
}

// BuilderID identifies this workflow run for provenance attestations.
func (c Context) BuilderID() string {
	return fmt.Sprintf("%s/%s/actions/runs/%s/attempts/%s",
		strings.TrimRight(c.ServerURL, "/"), c.Repository, c.RunID, c.RunAttempt)
}

// LogSummary emits the context as one structured line.
func (c Context) LogSummary(log *zap.Logger) {
	if log == nil {
		return
	}
	log.Info("GitHub context",
		zap.String("flow", ResolveFlow(c).String()),
		zap.String("context", c.describe()),
		zap.String("event", formatOrNone(c.EventName)),
		zap.String("ref", formatOrNone(c.Ref)),
		zap.String("sha", formatOrNone(c.SHA)),
		zap.String("repository", formatOrNone(c.Repository)),
		zap.String("defaultBranch", c.DefaultBranch),
		zap.String("branch", formatOrNone(c.BranchName())),
		zap.Strings("labels", c.Labels),
	)
}

func (c Context) describe() string {
	switch ResolveFlow(c) {
	case FlowPullRequest:
		return fmt.Sprintf("Pull request #%d", c.PRNumber)
	case FlowTag:
		return fmt.Sprintf("Tag push (%s)", c.TagName())
	case FlowDefault:
		return fmt.Sprintf("Push to default branch (%s)", c.DefaultBranch)
	case FlowBranch:
		return fmt.Sprintf("Branch push (%s)", c.BranchName())
	}
	return fmt.Sprintf("Event: %s", formatOrNone(c.EventName))
}
