package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// requestOptions holds the flags shared by get and post.
type requestOptions struct {
	data    string
	headers []string
	query   []string
	trusted bool
	status  bool
}

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	return newRequestCommand(http.MethodGet, "get PATH [KEY=VALUE...]", "Send a GET request to an API endpoint",
		`Send a GET request. Parameters become query parameters.

Examples:
  mkt get marketplace/show
  mkt get listings/query perPage=5 include=author,images`)
}

// NewPostCommand creates the post command
func NewPostCommand() *cobra.Command {
	return newRequestCommand(http.MethodPost, "post PATH [KEY=VALUE...]", "Send a POST request to an API endpoint",
		`Send a POST request. Parameters form the request body, except expand,
include and fields.* parameters which are sent as query parameters.
Values that parse as JSON are sent as JSON values.

Examples:
  mkt post own_listings/update id=5c0e1d6b-9a7e-4b0e-8f1e-2d8c7a6b5e4f title="New title"
  mkt post transactions/transition --trusted --data '{"transition":"transition/accept"}'`)
}

func newRequestCommand(method, use, short, long string) *cobra.Command {
	var opts requestOptions

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildEndpointRequest(method, args, &opts)
			if err != nil {
				return err
			}

			ctx := context.Background()

			return withClient(ctx, func(client sdk.Client) error {
				resp, err := client.Do(ctx, req)
				if err != nil {
					return fmt.Errorf("%s %s failed: %w", method, req.Path, err)
				}

				if opts.status {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d %s\n", resp.Status, http.StatusText(resp.Status))
				}

				return writeData(cmd.OutOrStdout(), viper.GetString("output"), resp.Data)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "JSON object merged into the parameters")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "extra header as 'Name: value'")
	cmd.Flags().StringArrayVarP(&opts.query, "query", "q", nil, "extra query parameter as key=value")
	cmd.Flags().BoolVar(&opts.trusted, "trusted", false, "the endpoint needs a trusted token")
	cmd.Flags().BoolVar(&opts.status, "status", false, "print the response status to stderr")

	return cmd
}

func buildEndpointRequest(method string, args []string, opts *requestOptions) (*sdk.EndpointRequest, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, constants.ErrPathRequired
	}

	params, err := parseParams(args[1:])
	if err != nil {
		return nil, err
	}

	if opts.data != "" {
		payload, err := parseJSONObject(opts.data)
		if err != nil {
			return nil, err
		}

		for key, value := range payload {
			params[key] = value
		}
	}

	req := &sdk.EndpointRequest{
		Method:  method,
		Path:    args[0],
		Params:  params,
		Trusted: opts.trusted,
	}

	if len(opts.query) > 0 {
		req.Query = url.Values{}

		for _, pair := range opts.query {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParam, pair)
			}

			req.Query.Add(key, value)
		}
	}

	if len(opts.headers) > 0 {
		req.Headers = make(map[string]string, len(opts.headers))

		for _, header := range opts.headers {
			name, value, ok := strings.Cut(header, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("%w: header %q", constants.ErrInvalidParam, header)
			}

			req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	return req, nil
}

// parseParams turns key=value arguments into parameters. A value that
// parses as JSON keeps its JSON type, anything else is a string.
func parseParams(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))

	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParam, arg)
		}

		params[key] = parseValue(raw)
	}

	return params, nil
}

func parseValue(raw string) any {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var value any

	err := decoder.Decode(&value)
	if err != nil || decoder.More() {
		return raw
	}

	return value
}

func parseJSONObject(raw string) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()

	var payload map[string]any

	err := decoder.Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidPayload, err)
	}

	return payload, nil
}
