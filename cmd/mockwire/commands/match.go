package commands

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yshengliao/mockwire/config"
	"github.com/yshengliao/mockwire/engine"
	"github.com/yshengliao/mockwire/registry"
	"github.com/yshengliao/mockwire/request"
)

func newMatchCmd() *cobra.Command {
	var (
		configPath string
		method     string
		headers    []string
		body       string
	)

	cmd := &cobra.Command{
		Use:   "match <url>",
		Short: "Dry-run a request against a handler definition file",
		Long: `Resolve a hypothetical request against the handlers in a definition
file and print the disposition. No network request is performed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(configPath)
			if err != nil {
				return err
			}
			handlers, err := config.Compile(f)
			if err != nil {
				return err
			}
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			reg := registry.New(handlers...)
			eng := engine.New(reg, engine.WithLogger(log))

			hdr := http.Header{}
			for _, kv := range headers {
				parts := strings.SplitN(kv, ":", 2)
				if len(parts) != 2 {
					return fmt.Errorf("malformed header %q, want Name: Value", kv)
				}
				hdr.Add(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
			}

			var bodyReader io.Reader
			if body != "" {
				bodyReader = strings.NewReader(body)
			}
			req, err := request.New(strings.ToUpper(method), args[0], hdr, bodyReader)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			matched, err := reg.Match(ctx, req)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no matching handler")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "matched: %s\n", matched)

			disp, err := eng.Resolve(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "disposition: %s\n", disp.Kind)
			if disp.Response != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "status: %d\n", disp.Response.StatusCode)
				if len(disp.Response.Body) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "body: %s\n", disp.Response.Body)
				}
			}
			if disp.Err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "error: %v\n", disp.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mockwire.yaml", "handler definition file")
	cmd.Flags().StringVarP(&method, "method", "X", "GET", "request method")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header (Name: Value), repeatable")
	cmd.Flags().StringVarP(&body, "body", "d", "", "request body")

	return cmd
}
