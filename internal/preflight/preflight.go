// Package preflight checks the prerequisites of a generation run: the Ruby,
// Rails, and JavaScript toolchains and a reachable PostgreSQL server.
package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/donaldgifford/railsforge/internal/shell"
)

// Status is the outcome of a single check.
type Status string

// Check statuses.
const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Tool names.
const (
	ToolRuby     = "ruby"
	ToolBundler  = "bundler"
	ToolRails    = "rails"
	ToolNode     = "node"
	ToolYarn     = "yarn"
	ToolPostgres = "postgresql"
)

// DefaultTimeout bounds the database ping.
const DefaultTimeout = 5 * time.Second

// Pinger checks that a database URL accepts connections.
type Pinger interface {
	Ping(ctx context.Context, url string) error
}

// PGX pings PostgreSQL with pgx.
type PGX struct{}

// Ping connects to url and pings the server.
func (PGX) Ping(ctx context.Context, url string) error {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	return nil
}

// Opts configures a preflight run.
type Opts struct {
	Runner shell.Runner
	// Pinger checks DatabaseURL. Defaults to PGX.
	Pinger Pinger
	// DatabaseURL is pinged when set; the check is skipped otherwise.
	DatabaseURL string
	Timeout     time.Duration
	// OutputFormat is "text" or "json". Nothing is written when Writer is nil.
	OutputFormat string
	Writer       io.Writer
	Logger       *slog.Logger
}

// Check is the result for one prerequisite.
type Check struct {
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Version  string `json:"version,omitempty"`
	Required bool   `json:"required"`
	Detail   string `json:"detail,omitempty"`
}

// Result holds every check in run order.
type Result struct {
	Checks []Check `json:"checks"`
}

// OK reports whether every required check passed.
func (r *Result) OK() bool {
	for i := range r.Checks {
		if r.Checks[i].Required && r.Checks[i].Status != StatusOK {
			return false
		}
	}

	return true
}

// Version returns the detected version of a tool, or "".
func (r *Result) Version(name string) string {
	for i := range r.Checks {
		if r.Checks[i].Name == name {
			return r.Checks[i].Version
		}
	}

	return ""
}

type tool struct {
	name     string
	argv     []string
	required bool
}

var tools = []tool{
	{name: ToolRuby, argv: []string{"ruby", "-v"}, required: true},
	{name: ToolBundler, argv: []string{"bundle", "-v"}, required: true},
	{name: ToolRails, argv: []string{"rails", "-v"}, required: true},
	{name: ToolNode, argv: []string{"node", "-v"}},
	{name: ToolYarn, argv: []string{"yarn", "-v"}},
}

var versionRe = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// ParseVersion extracts the first dotted version number from command output,
// as in "ruby 3.4.1 (2024-12-25 revision 48d4efcb85)" or "v22.11.0".
func ParseVersion(output string) string {
	return versionRe.FindString(output)
}

// Run executes every check and writes the result when a Writer is set.
func Run(ctx context.Context, opts *Opts) (*Result, error) {
	if opts.Runner == nil {
		return nil, errors.New("command runner is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := &Result{}

	for _, t := range tools {
		c := runTool(ctx, opts.Runner, t)
		logger.Debug("preflight check", "tool", c.Name, "status", c.Status, "version", c.Version)
		result.Checks = append(result.Checks, c)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Checks = append(result.Checks, checkDatabase(ctx, opts))

	if opts.Writer == nil {
		return result, nil
	}

	return result, renderResult(opts.Writer, opts.OutputFormat, result)
}

// DetectVersions returns the versions of the tools a plan records. Tools that
// are missing come back empty so the caller can apply its defaults.
func DetectVersions(ctx context.Context, runner shell.Runner) (ruby, rails, node string) {
	versions := make(map[string]string, 3)

	for _, t := range tools {
		if t.name != ToolRuby && t.name != ToolRails && t.name != ToolNode {
			continue
		}

		versions[t.name] = runTool(ctx, runner, t).Version
	}

	return versions[ToolRuby], versions[ToolRails], versions[ToolNode]
}

// DatabaseURL reads DATABASE_URL from the project's .env, then the environment.
func DatabaseURL(dir string, logger *slog.Logger) string {
	env, err := godotenv.Read(filepath.Join(dir, ".env"))

	switch {
	case err == nil && env["DATABASE_URL"] != "":
		return env["DATABASE_URL"]
	case err != nil && !errors.Is(err, os.ErrNotExist):
		logger.Warn("ignoring unreadable .env", "err", err)
	}

	return os.Getenv("DATABASE_URL")
}

func runTool(ctx context.Context, runner shell.Runner, t tool) Check {
	c := Check{Name: t.name, Required: t.required}

	res, err := runner.Run(ctx, "", t.argv)

	switch {
	case err != nil:
		c.Status = StatusMissing
		c.Detail = err.Error()
	case res.ExitCode != 0:
		c.Status = StatusFailed
		c.Detail = fmt.Sprintf("%s exited with status %d", strings.Join(t.argv, " "), res.ExitCode)
	default:
		c.Status = StatusOK
		c.Version = ParseVersion(res.Stdout)
	}

	return c
}

func checkDatabase(ctx context.Context, opts *Opts) Check {
	c := Check{Name: ToolPostgres, Required: opts.DatabaseURL != ""}

	if opts.DatabaseURL == "" {
		c.Status = StatusSkipped
		c.Detail = "DATABASE_URL not set"

		return c
	}

	pinger := opts.Pinger
	if pinger == nil {
		pinger = PGX{}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pinger.Ping(ctx, opts.DatabaseURL); err != nil {
		c.Status = StatusFailed
		c.Detail = err.Error()

		return c
	}

	c.Status = StatusOK

	return c
}

func renderResult(w io.Writer, format string, result *Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	default:
		return renderText(w, result)
	}
}

func renderText(w io.Writer, result *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "TOOL\tSTATUS\tVERSION\tDETAIL"); err != nil {
		return err
	}

	for i := range result.Checks {
		c := &result.Checks[i]

		status := string(c.Status)
		if c.Required && c.Status != StatusOK {
			status = strings.ToUpper(status)
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, status, c.Version, c.Detail); err != nil {
			return err
		}
	}

	return tw.Flush()
}
