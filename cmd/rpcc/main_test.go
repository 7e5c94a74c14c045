package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"

	"github.com/felixgeelhaar/rpc-go/protocol"
	"github.com/felixgeelhaar/rpc-go/testutil"
)

func parse(t *testing.T, args ...string) (Options, string) {
	t.Helper()
	var options Options
	parser := flags.NewParser(&options, flags.None)
	parser.SubcommandsOptional = true
	if _, err := parser.ParseArgs(args); err != nil {
		t.Fatalf("ParseArgs(%q): %v", args, err)
	}
	cmd := ""
	if parser.Active != nil {
		cmd = parser.Active.Name
	}
	return options, cmd
}

func TestOptions(t *testing.T) {
	t.Setenv("RPCC_URL", "http://env.example/rpc")
	t.Setenv("RPCC_TOKEN", "secret")

	options, cmd := parse(t, "-vv", "--strict", "-H", "X-A: 1", "-H", "X-B:2", "call", "add", "[1,2]")

	if cmd != "call" {
		t.Errorf("cmd = %q, want call", cmd)
	}
	if options.URL != "http://env.example/rpc" {
		t.Errorf("URL = %q, want env fallback", options.URL)
	}
	if options.Bearer != "secret" {
		t.Errorf("Bearer = %q", options.Bearer)
	}
	if !options.Strict {
		t.Error("Strict not set")
	}
	if options.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s default", options.Timeout)
	}
	if len(options.Verbose) != 2 {
		t.Errorf("Verbose = %d, want 2", len(options.Verbose))
	}
	if len(options.Headers) != 2 {
		t.Errorf("Headers = %q", options.Headers)
	}
	if options.Call.Args.Method != "add" || options.Call.Args.Params != "[1,2]" {
		t.Errorf("args = %+v", options.Call.Args)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbose int
		want    log.Level
	}{
		{0, log.Warning},
		{1, log.Info},
		{2, log.Debug},
		{5, log.Debug},
	}

	for _, tt := range tests {
		if got := levelFor(tt.verbose); got != tt.want {
			t.Errorf("levelFor(%d) = %v, want %v", tt.verbose, got, tt.want)
		}
	}
}

func newServer(t *testing.T) *testutil.Server {
	t.Helper()
	srv := testutil.NewServer(t)
	srv.Handle("add", func(ctx context.Context, req *protocol.Request) (any, error) {
		var nums []int
		if err := json.Unmarshal(req.Params, &nums); err != nil {
			return nil, protocol.NewInvalidParams(err.Error())
		}
		sum := 0
		for _, n := range nums {
			sum += n
		}
		return sum, nil
	})
	srv.Handle("log", func(ctx context.Context, req *protocol.Request) (any, error) {
		return nil, nil
	})
	srv.Reply("down", http.StatusBadGateway, "bad gateway")
	return srv
}

func TestRun(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name       string
		args       []string
		stdin      string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "call",
			args:       []string{"--url", srv.URL, "call", "add", "[1,2]"},
			wantCode:   exitOK,
			wantStdout: "3\n",
		},
		{
			name:       "zero timeout disables the deadline",
			args:       []string{"--url", srv.URL, "--timeout", "0", "call", "add", "[4,4]"},
			wantCode:   exitOK,
			wantStdout: "8\n",
		},
		{
			name:       "params from stdin",
			args:       []string{"--url", srv.URL, "call", "add", "-"},
			stdin:      "[2,3]\n",
			wantCode:   exitOK,
			wantStdout: "5\n",
		},
		{
			name:       "remote error",
			args:       []string{"--url", srv.URL, "call", "missing"},
			wantCode:   exitRemote,
			wantStderr: `"code":-32601`,
		},
		{
			name:       "notify",
			args:       []string{"--url", srv.URL, "--strict", "notify", "log", `{"level":"info"}`},
			wantCode:   exitOK,
		},
		{
			name:       "invalid params json",
			args:       []string{"--url", srv.URL, "call", "add", "[1,"},
			wantCode:   exitLocal,
			wantStderr: "invalid params",
		},
		{
			name:       "strict status",
			args:       []string{"--url", srv.URL, "--strict", "call", "down"},
			wantCode:   exitLocal,
			wantStderr: "unexpected status 502",
		},
		{
			name:       "lenient malformed",
			args:       []string{"--url", srv.URL, "call", "down"},
			wantCode:   exitLocal,
			wantStderr: "Response is not valid JSON",
		},
		{
			name:       "bad header",
			args:       []string{"--url", srv.URL, "-H", "nocolon", "call", "add"},
			wantCode:   exitLocal,
			wantStderr: "invalid header",
		},
		{
			name:       "missing url",
			args:       []string{"call", "add"},
			wantCode:   exitLocal,
			wantStderr: "no endpoint",
		},
		{
			name:       "exec missing binary",
			args:       []string{"--exec", "rpcc-no-such-peer", "call", "add"},
			wantCode:   exitLocal,
			wantStderr: "starting rpcc-no-such-peer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RPCC_URL", "")
			options, cmd := parse(t, tt.args...)

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), options, cmd, strings.NewReader(tt.stdin), &stdout, &stderr)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRun_HeadersAndLogging(t *testing.T) {
	srv := newServer(t)

	var logs bytes.Buffer
	SetLogger(golog.New(&logs, log.Debug))
	t.Cleanup(func() { SetLogger(golog.New(&bytes.Buffer{}, log.Debug)) })

	options, cmd := parse(t, "--url", srv.URL, "--bearer", "tok", "-H", "X-Tenant: acme", "call", "add", "[4,4]")

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), options, cmd, strings.NewReader(""), &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr.String())
	}

	header := srv.Last().Header
	if got := header.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("Authorization = %q", got)
	}
	if got := header.Get("X-Tenant"); got != "acme" {
		t.Errorf("X-Tenant = %q", got)
	}
	if got := header.Get("X-Request-ID"); got == "" {
		t.Error("X-Request-ID not sent")
	}
	if !strings.HasPrefix(header.Get("User-Agent"), "rpcc/") {
		t.Errorf("User-Agent = %q", header.Get("User-Agent"))
	}
	if !strings.Contains(logs.String(), "call completed method=add") {
		t.Errorf("logs = %q, want call completed entry", logs.String())
	}
}

func TestRun_Exec(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	// cat echoes the envelope back, which has neither result nor error.
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{name: "notify", args: []string{"--exec", "cat", "notify", "log", `["x"]`}, wantCode: exitOK},
		{name: "call", args: []string{"--exec", "cat", "call", "add", "[1,2]"}, wantCode: exitLocal, wantStderr: "Response must have 'error' or 'result' properties"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RPCC_URL", "")
			options, cmd := parse(t, tt.args...)

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), options, cmd, strings.NewReader(""), &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
