// Command bbquery performs a single Bitbucket Cloud read and prints the result.
//
//	bbquery [-o json|yaml] [-page N] [-include REV]... [-exclude REV]... <endpoint> <args...>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samvad-hq/bitbucket-harvester/internal/app"
	"github.com/samvad-hq/bitbucket-harvester/internal/config"
	"github.com/samvad-hq/bitbucket-harvester/internal/logger"
	"github.com/samvad-hq/bitbucket-harvester/pkg/bitbucket"
	"github.com/samvad-hq/bitbucket-harvester/pkg/queries"
	"gopkg.in/yaml.v3"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	format string
	query  queries.Query
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "bbquery: %v\n", err)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "bbquery: load config: %v\n", err)
		return exitFail
	}

	log, err := logger.InitTo(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "bbquery: init logger: %v\n", err)
		return exitFail
	}
	defer logger.Close()

	client, err := app.NewClient(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "bbquery: %v\n", err)
		return exitFail
	}

	return execute(ctx, client, opts, stdout, stderr)
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("bbquery", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts     options
		page     int
		includes []string
		excludes []string
	)
	fs.StringVar(&opts.format, "o", "json", "output format: json or yaml")
	fs.IntVar(&page, "page", 0, "page number for paginated endpoints")
	fs.Func("include", "revision to include (commits, repeatable)", func(v string) error {
		includes = append(includes, v)
		return nil
	})
	fs.Func("exclude", "revision to exclude (commits, repeatable)", func(v string) error {
		excludes = append(excludes, v)
		return nil
	})
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: bbquery [flags] <endpoint> <args...>")
		fmt.Fprintln(stderr, "\nendpoints:")
		for _, name := range queries.Endpoints() {
			names, _ := queries.RequiredArgs(name)
			fmt.Fprintf(stderr, "  %-22s <%s>\n", name, strings.Join(names, "> <"))
		}
		fmt.Fprintln(stderr, "\nflags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	if opts.format != "json" && opts.format != "yaml" {
		return options{}, fmt.Errorf("unsupported output format %q", opts.format)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return options{}, errors.New("endpoint is required")
	}

	q, err := queries.FromArgs("bbquery", rest[0], rest[1:])
	if err != nil {
		return options{}, err
	}
	q.Page = page
	q.Include = includes
	q.Exclude = excludes
	opts.query = q
	return opts, nil
}

func execute(ctx context.Context, api queries.API, opts options, stdout, stderr io.Writer) int {
	payload, err := queries.NewDispatcher(api).Run(ctx, opts.query)
	if err != nil {
		var statusErr *bitbucket.StatusError
		if errors.As(err, &statusErr) {
			fmt.Fprintf(stderr, "status %d\n", statusErr.StatusCode)
			if len(statusErr.Body) > 0 {
				fmt.Fprintln(stderr, strings.TrimRight(string(statusErr.Body), "\n"))
			}
			return exitFail
		}
		fmt.Fprintf(stderr, "bbquery: %v\n", err)
		return exitFail
	}

	if err := printPayload(stdout, opts.format, payload); err != nil {
		fmt.Fprintf(stderr, "bbquery: %v\n", err)
		return exitFail
	}
	return exitOK
}

// printPayload renders the decoded tree. A 200 body that was not JSON is
// written through unchanged.
func printPayload(w io.Writer, format string, payload bitbucket.Payload) error {
	if payload.Value == nil {
		if len(payload.Body) > 0 {
			_, err := fmt.Fprintln(w, strings.TrimRight(string(payload.Body), "\n"))
			return err
		}
		_, err := fmt.Fprintln(w, "null")
		return err
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(payload.Value); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		out, err := json.MarshalIndent(payload.Value, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
}
