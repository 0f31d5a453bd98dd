package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/odvcencio/furrykit/fetch"
	"github.com/odvcencio/furrykit/runtime"
	"github.com/odvcencio/furrykit/state"
)

type fetchFlags struct {
	method  string
	headers []string
	params  []string
	data    string
	noColor bool
}

func newFetchCmd(e *env) *cobra.Command {
	var f fetchFlags
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Run one JSON request and print the decoded body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(args[0])
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), e, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), !f.noColor)
		},
	}
	cmd.Flags().StringVarP(&f.method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	cmd.Flags().StringArrayVarP(&f.params, "query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "JSON request body")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable syntax highlighting")
	return cmd
}

func (f fetchFlags) options(url string) (fetch.Options, error) {
	opts := fetch.Options{URL: url, Method: strings.ToUpper(f.method)}
	if len(f.headers) > 0 {
		opts.Headers = make(map[string]string, len(f.headers))
		for _, h := range f.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return fetch.Options{}, fmt.Errorf("invalid header %q: want 'Name: value'", h)
			}
			opts.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	if len(f.params) > 0 {
		opts.Params = make(map[string]string, len(f.params))
		for _, p := range f.params {
			key, value, ok := strings.Cut(p, "=")
			if !ok || key == "" {
				return fetch.Options{}, fmt.Errorf("invalid query parameter %q: want key=value", p)
			}
			opts.Params[key] = value
		}
	}
	if f.data != "" {
		var body any
		if err := json.Unmarshal([]byte(f.data), &body); err != nil {
			return fetch.Options{}, fmt.Errorf("request body is not valid JSON: %w", err)
		}
		opts.Body = body
	}
	return opts, nil
}

func runFetch(ctx context.Context, e *env, opts fetch.Options, stdout, stderr io.Writer, color bool) error {
	logger := e.logger
	req := fetch.New[any](
		fetch.WithClient(&http.Client{Timeout: e.cfg.HTTPTimeout}),
		fetch.WithLogger(logger),
		fetch.WithBaseURL(e.cfg.BaseURL),
	)

	var settled *fetch.Result[any]
	app := runtime.NewApp(runtime.AppConfig{
		Logger:      &logger,
		FlushPolicy: runtime.FlushOnMessage,
		Update: func(app *runtime.App, msg runtime.Message) bool {
			if m, ok := msg.(fetch.SettledMsg[any]); ok {
				res := m.Result
				settled = &res
				app.ExecuteCommand(runtime.Quit{})
			}
			return false
		},
	})

	subs := state.NewSubscriptions(app.StateScheduler())
	defer subs.Clear()
	subs.Observe(req.IsLoading(), func() {
		logger.Info().
			Str("request_id", req.RequestID().Get()).
			Bool("loading", req.IsLoading().Get()).
			Int("status", req.Status().Get()).
			Msg("request state")
	})

	app.Spawn(req.ExecuteEffect(opts))
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if settled == nil {
		return errors.New("request interrupted")
	}
	if settled.IsError {
		if settled.Status != 0 {
			fmt.Fprintf(stderr, "%s (status %d)\n", settled.ErrorMessage, settled.Status)
		} else {
			fmt.Fprintln(stderr, settled.ErrorMessage)
		}
		return errSilent
	}

	pretty, err := json.MarshalIndent(settled.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("format body: %w", err)
	}
	return writeJSON(stdout, string(pretty)+"\n", color)
}
