// Command rpcc issues a single JSON-RPC 2.0 call or notification.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"time"

	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"

	"github.com/felixgeelhaar/rpc-go/client"
	"github.com/felixgeelhaar/rpc-go/middleware"
	"github.com/felixgeelhaar/rpc-go/protocol"
	"github.com/felixgeelhaar/rpc-go/transport"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Exit codes.
const (
	exitOK     = 0
	exitLocal  = 1
	exitRemote = 2
)

type invocation struct {
	Args struct {
		Method string `positional-arg-name:"method" description:"Remote method name." required:"yes"`
		Params string `positional-arg-name:"params" description:"Params as JSON, or - to read them from stdin."`
	} `positional-args:"yes"`
}

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`

	URL       string        `long:"url" env:"RPCC_URL" description:"JSON-RPC endpoint URL."`
	Strict    bool          `long:"strict" env:"RPCC_STRICT" description:"Fail on non-2xx transport statuses without reading the body."`
	Timeout   time.Duration `long:"timeout" default:"30s" description:"Timeout for the whole invocation, 0 for none."`
	Headers   []string      `short:"H" long:"header" description:"Extra request header as key:value. Repeatable."`
	Bearer    string        `long:"bearer" env:"RPCC_TOKEN" description:"Bearer token sent in the Authorization header."`
	VerifyID  bool          `long:"verify-id" description:"Reject replies whose id does not match the call."`
	WebSocket bool          `long:"websocket" description:"Send over a WebSocket connection instead of HTTP POST."`
	Exec      string        `long:"exec" description:"Run this command and exchange envelopes over its stdin and stdout instead of --url."`

	Call   invocation `command:"call" description:"Call a method and print its result."`
	Notify invocation `command:"notify" description:"Send a notification. No reply is read."`
}

const usage = `Examples:
* Call a method:
  $ rpcc --url http://localhost:8545 call add '[1,2]'

* Send a notification with params from stdin:
  $ echo '{"level":"info"}' | rpcc --url http://localhost:8545 notify log -
`

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	parser.SubcommandsOptional = true
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Println(err)
		}
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp {
			exit(exitOK, usage)
		}
		os.Exit(exitLocal)
	}

	if options.Version {
		fmt.Println(Version)
		os.Exit(exitOK)
	}

	SetLogger(golog.New(os.Stderr, levelFor(len(options.Verbose))))

	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		exit(exitLocal, "\n%s", usage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, options, parser.Active.Name, os.Stdin, os.Stdout, os.Stderr))
}

// run executes cmd and returns the process exit code.
func run(ctx context.Context, options Options, cmd string, stdin io.Reader, stdout, stderr io.Writer) int {
	c, closePeer, err := newClient(options)
	if err != nil {
		fmt.Fprintf(stderr, "%s failed: %s\n", cmd, err)
		return exitLocal
	}
	defer func() {
		if err := closePeer(); err != nil {
			logger.Warningf("peer exited: %s", err)
		}
	}()

	inv := options.Call
	if cmd == "notify" {
		inv = options.Notify
	}

	params, err := readParams(inv.Args.Params, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "%s failed: %s\n", cmd, err)
		return exitLocal
	}

	logger.Debugf("%s %s on %s", cmd, inv.Args.Method, c.Endpoint())

	switch cmd {
	case "call":
		var result json.RawMessage
		result, err = c.Call(ctx, inv.Args.Method, params)
		if err == nil {
			fmt.Fprintf(stdout, "%s\n", result)
		}
	case "notify":
		err = c.Notify(ctx, inv.Args.Method, params)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	return report(cmd, err, stderr)
}

// report prints err and returns the exit code for it. Remote errors are
// printed as the JSON error object.
func report(cmd string, err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	var rpcErr *protocol.Error
	if errors.As(err, &rpcErr) {
		out, merr := json.Marshal(rpcErr)
		if merr != nil {
			fmt.Fprintf(stderr, "%s failed: %s\n", cmd, err)
		} else {
			fmt.Fprintf(stderr, "%s\n", out)
		}
		return exitRemote
	}

	fmt.Fprintf(stderr, "%s failed: %s\n", cmd, err)
	return exitLocal
}

// newClient builds the client described by options. The returned func
// releases the peer process started for --exec.
func newClient(options Options) (*client.Client, func() error, error) {
	noop := func() error { return nil }

	if options.URL == "" && options.Exec == "" {
		return nil, nil, errors.New("no endpoint: set --url, RPCC_URL or --exec")
	}

	opts := []client.Option{
		client.WithStrictServerResponse(options.Strict),
		client.WithVerifyID(options.VerifyID),
	}

	for _, h := range options.Headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, nil, fmt.Errorf("invalid header %q: want key:value", h)
		}
		opts = append(opts, client.WithHeader(strings.TrimSpace(key), strings.TrimSpace(value)))
	}

	endpoint, closePeer := options.URL, noop
	switch {
	case options.Exec != "":
		t, stop, err := startPeer(options.Exec)
		if err != nil {
			return nil, nil, err
		}
		endpoint, closePeer = options.Exec, stop
		opts = append(opts, client.WithTransport(t))
	case options.WebSocket:
		opts = append(opts, client.WithTransport(transport.NewWebSocket()))
	default:
		opts = append(opts, client.WithTransport(transport.NewHTTP(
			transport.WithUserAgent("rpcc/"+Version),
		)))
	}

	stack := middleware.DefaultStack(middlewareLogger{logger})
	if options.Timeout > 0 {
		stack = middleware.DefaultStackWithTimeout(middlewareLogger{logger}, options.Timeout)
	}
	if options.Bearer != "" {
		stack = append(stack, middleware.BearerToken(options.Bearer))
	}
	opts = append(opts, client.WithMiddleware(stack...))

	return client.New(endpoint, opts...), closePeer, nil
}

// startPeer runs command and returns a transport over its stdin and stdout.
// The returned func closes stdin and waits for the process to exit.
func startPeer(command string) (transport.Exchanger, func() error, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, nil, errors.New("empty --exec command")
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting %s: %w", args[0], err)
	}
	logger.Debugf("started peer %s (pid %d)", args[0], cmd.Process.Pid)

	stop := func() error {
		_ = stdin.Close()
		return cmd.Wait()
	}
	return transport.NewStdio(stdout, stdin), stop, nil
}

// readParams returns the params argument as raw JSON. An empty argument
// means no params and - reads them from stdin.
func readParams(arg string, stdin io.Reader) (any, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading params: %w", err)
		}
		arg = strings.TrimSpace(string(data))
	}
	if arg == "" {
		return nil, nil
	}
	return json.RawMessage(arg), nil
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}
