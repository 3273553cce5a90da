package dispatch

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/redhatinsights/inicfg/internal/command"
	"github.com/redhatinsights/inicfg/internal/document"
)

type outcome struct {
	code   int
	stdout string
	stderr string
}

func newDispatcher(stdout, stderr io.Writer) *Dispatcher {
	return &Dispatcher{
		Registry: command.Default(),
		Stdout:   stdout,
		Stderr:   stderr,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// invoke runs argv and fails the test on a fatal error.
func invoke(t *testing.T, argv ...string) outcome {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code, err := newDispatcher(&stdout, &stderr).Run(argv)
	if err != nil {
		t.Fatalf("Run(%q) failed: %v", argv, err)
	}
	return outcome{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_DebugEcho(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{name: "flag last", argv: []string{"foo.ini", "get", "header", "key", "-d"}},
		{name: "flag first", argv: []string{"-d", "foo.ini", "get", "header", "key"}},
		{name: "long flag in the middle", argv: []string{"foo.ini", "get", "--debug", "header", "key"}},
	}

	expected := outcome{
		code:   ExitNoResult,
		stderr: "ARGS: Invocation(command=\"get\", debug=true, files=[\"foo.ini\"]) [\"header\" \"key\"]\n",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoke(t, tt.argv...)
			if diff := cmp.Diff(expected, got, cmp.AllowUnexported(outcome{})); diff != "" {
				t.Errorf("debug echo mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_DebugEchoDoesNotTouchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.ini")
	invoke(t, path, "set", "header", "key", "value", "-d")
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected %s not to exist, got %v", path, err)
	}
}

func TestRun_Session(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.ini")

	steps := []struct {
		name     string
		argv     []string
		expected outcome
	}{
		{
			name:     "write creates the file",
			argv:     []string{path, "write"},
			expected: outcome{code: ExitSuccess},
		},
		{
			name:     "set positional",
			argv:     []string{path, "set", "header", "key", "value"},
			expected: outcome{code: ExitSuccess},
		},
		{
			name:     "get",
			argv:     []string{path, "get", "header", "key"},
			expected: outcome{code: ExitSuccess, stdout: "value\n"},
		},
		{
			name:     "default command prints the file",
			argv:     []string{path},
			expected: outcome{code: ExitSuccess, stdout: "[header]\nkey = value\n"},
		},
		{
			name:     "set inline",
			argv:     []string{path, "set", "header", "--key:=other"},
			expected: outcome{code: ExitSuccess},
		},
		{
			name:     "get after inline set",
			argv:     []string{path, "get", "header", "key"},
			expected: outcome{code: ExitSuccess, stdout: "other\n"},
		},
		{
			name:     "get missing key",
			argv:     []string{path, "get", "header", "missing"},
			expected: outcome{code: ExitNoResult},
		},
		{
			name:     "add existing section",
			argv:     []string{path, "add_section", "header"},
			expected: outcome{code: ExitSuccess},
		},
		{
			name:     "set a path",
			argv:     []string{path, "set", "header", "key", "c:/path/value"},
			expected: outcome{code: ExitSuccess},
		},
		{
			name:     "values",
			argv:     []string{path, "values", "header"},
			expected: outcome{code: ExitSuccess, stdout: "key => c:/path/value\n"},
		},
		{
			name:     "items",
			argv:     []string{path, "items"},
			expected: outcome{code: ExitSuccess, stdout: "key\n"},
		},
		{
			name:     "dos",
			argv:     []string{path, "dos"},
			expected: outcome{code: ExitSuccess, stdout: "set \"KEY=c:\\path\\value\"\n"},
		},
		{
			name:     "bash",
			argv:     []string{path, "bash"},
			expected: outcome{code: ExitSuccess, stdout: "export KEY=\"c:/path/value\"\n"},
		},
		{
			name:     "setlist",
			argv:     []string{path, "setlist", "header", "list", "a", "b", "c"},
			expected: outcome{code: ExitSuccess},
		},
		{
			name:     "get list",
			argv:     []string{path, "get", "header", "list"},
			expected: outcome{code: ExitSuccess, stdout: "a b c\n"},
		},
	}

	for _, step := range steps {
		got := invoke(t, step.argv...)
		if diff := cmp.Diff(step.expected, got, cmp.AllowUnexported(outcome{})); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", step.name, diff)
		}
	}
}

func TestRun_CommaSeparatedFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.ini")
	second := filepath.Join(dir, "second.ini")

	invoke(t, first+","+second, "set", "header", "key", "value")

	if _, err := os.Stat(first); err != nil {
		t.Errorf("expected first file to be written: %v", err)
	}
	if _, err := os.Stat(second); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected second file to be left alone, got %v", err)
	}
}

func TestRun_DoubleDashPassesTokensThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.ini")
	invoke(t, path, "set", "header", "--", "flag", "-d")

	got := invoke(t, path, "get", "header", "flag")
	if diff := cmp.Diff("-d\n", got.stdout); diff != "" {
		t.Errorf("get mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Help(t *testing.T) {
	got := invoke(t, "help")
	if got.code != ExitSuccess {
		t.Errorf("help exited with %d", got.code)
	}
	for _, name := range command.Default().Names() {
		if !strings.Contains(got.stdout, name) {
			t.Errorf("help output does not mention %q:\n%s", name, got.stdout)
		}
	}

	got = invoke(t, "help", "values")
	expected := "List the keys and values of section as key => value, or of every section when none is given.\n"
	if diff := cmp.Diff(expected, got.stdout); diff != "" {
		t.Errorf("help values mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.ini")

	tests := []struct {
		name        string
		argv        []string
		expectError error
	}{
		{
			name:        "no arguments",
			argv:        nil,
			expectError: ErrUsage,
		},
		{
			name:        "only commas",
			argv:        []string{",,"},
			expectError: ErrUsage,
		},
		{
			name:        "unknown command",
			argv:        []string{missing, "bogus"},
			expectError: command.ErrUnknownCommand,
		},
		{
			name:        "missing argument",
			argv:        []string{missing, "get", "header"},
			expectError: command.ErrMissingArgument,
		},
		{
			name:        "too many arguments",
			argv:        []string{missing, "get", "header", "key", "extra"},
			expectError: command.ErrTooManyArguments,
		},
		{
			name:        "query on a missing file",
			argv:        []string{missing, "get", "header", "key"},
			expectError: fs.ErrNotExist,
		},
		{
			name:        "directory instead of a file",
			argv:        []string{dir, "get", "header", "key"},
			expectError: syscall.EISDIR,
		},
		{
			name:        "help for an unknown command",
			argv:        []string{"help", "bogus"},
			expectError: command.ErrUnknownCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code, err := newDispatcher(&stdout, &stderr).Run(tt.argv)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}
			if code != ExitFatal {
				t.Errorf("expected exit code %d, got %d", ExitFatal, code)
			}
			if stdout.Len() != 0 {
				t.Errorf("expected no output, got %q", stdout.String())
			}
		})
	}

	if _, err := os.Stat(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("failed invocations created %s", missing)
	}
}

func TestRun_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.ini")
	var stdout, stderr bytes.Buffer
	d := newDispatcher(&stdout, &stderr)
	d.Options = document.Options{FileMode: 0o600}

	if _, err := d.Run([]string{path, "write"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Errorf("file mode = %o, want 600", got)
	}
}

func TestRun_SetGetRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "interpolation syntax", value: "%(other)s"},
		{name: "percent sign", value: "100%"},
		{name: "inner double quotes", value: `say "hi"`},
		{name: "inner single quotes", value: "it's"},
		{name: "backtick", value: "a`b"},
		{name: "comment characters", value: "a#b;c"},
		{name: "leading and trailing spaces", value: "  padded  "},
		{name: "multi-line", value: "line one\nline two"},
		{name: "trailing backslash", value: `c:\dir\`},
		{name: "equals sign", value: "a=b"},
		{name: "empty", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "foo.ini")
			invoke(t, path, "set", "header", "other", "EXPANDED")
			invoke(t, path, "set", "header", "key", tt.value)
			invoke(t, path, "set", "header", "after", "kept")

			got := invoke(t, path, "get", "header", "key")
			expected := outcome{code: ExitSuccess, stdout: tt.value + "\n"}
			if diff := cmp.Diff(expected, got, cmp.AllowUnexported(outcome{})); diff != "" {
				t.Errorf("get mismatch (-want +got):\n%s", diff)
			}

			got = invoke(t, path, "get", "header", "after")
			if diff := cmp.Diff("kept\n", got.stdout); diff != "" {
				t.Errorf("neighbouring key mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_UnrepresentableValueLeavesFileIntact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.ini")
	invoke(t, path, "set", "header", "key", "value")

	for _, value := range []string{`"""`, `"quoted"`} {
		var stdout, stderr bytes.Buffer
		code, err := newDispatcher(&stdout, &stderr).Run([]string{path, "set", "header", "key", value})
		if !errors.Is(err, document.ErrUnrepresentable) {
			t.Fatalf("set %q: expected ErrUnrepresentable, got %v", value, err)
		}
		if code != ExitFatal {
			t.Errorf("set %q: expected exit code %d, got %d", value, ExitFatal, code)
		}
	}

	got := invoke(t, path, "get", "header", "key")
	if diff := cmp.Diff("value\n", got.stdout); diff != "" {
		t.Errorf("get mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_DebugEchoNeedsAKnownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code, err := newDispatcher(&stdout, &stderr).Run([]string{"foo.ini", "bogus", "-d"})
	if !errors.Is(err, command.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if code != ExitFatal {
		t.Errorf("expected exit code %d, got %d", ExitFatal, code)
	}
	if stderr.Len() != 0 {
		t.Errorf("expected no debug echo, got %q", stderr.String())
	}
}
