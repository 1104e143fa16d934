package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"igapi/pkg/auth"
	"igapi/pkg/instagram"
	"igapi/pkg/retry"
	"igapi/pkg/ui"
)

var (
	callQuery    []string
	callParams   []string
	callUnsigned bool
	callMethod   string
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call <endpoint>",
	Short: "Call any API endpoint and print the JSON response",
	Long: `Call an endpoint relative to /api/v1/ and print the response.

Query values go in the URL. Body params make the request a POST whose body is
signed unless --unsigned is given. Use key:=<json> to send a JSON value
instead of a string.`,
	Example: `  igapi call users/25025320/info/
  igapi call feed/timeline/ -q max_id=QVFE...
  igapi call friendships/show_many/ -p user_ids=1,2,3 --unsigned
  igapi call live/get_live_presence/ -p 'broadcast_ids:=["1","2"]'`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringArrayVarP(&callQuery, "query", "q", nil, "query parameter key=value (repeatable)")
	callCmd.Flags().StringArrayVarP(&callParams, "param", "p", nil, "body parameter key=value or key:=json (repeatable)")
	callCmd.Flags().BoolVar(&callUnsigned, "unsigned", false, "send body params as a plain form")
	callCmd.Flags().StringVarP(&callMethod, "method", "X", "", "force the HTTP method")
}

func runCall(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	query, err := parseQuery(callQuery)
	if err != nil {
		return err
	}
	params, err := parseParams(callParams)
	if err != nil {
		return err
	}

	client, err := a.loggedInClient()
	if errors.Is(err, errNotLoggedIn) {
		ui.PrintWarning("Not logged in, calling anonymously")
		client, err = a.newClient(&auth.Account{Username: a.cfg.Session.Username})
	}
	if err != nil {
		return err
	}

	call := instagram.Call{
		Query:    query,
		Params:   params,
		Unsigned: callUnsigned,
		Method:   strings.ToUpper(callMethod),
	}
	res, err := retry.DoWithResult(func() (instagram.Response, error) {
		return client.Call(args[0], call)
	}, a.retrier(client).Config())
	if err != nil {
		return err
	}
	return printJSON(res)
}

func splitPair(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", pair)
	}
	return key, value, nil
}

func parseQuery(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, err := splitPair(p)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// parseParams reads key=value as a string and key:=value as JSON
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, err := splitPair(p)
		if err != nil {
			return nil, err
		}
		if raw, ok := strings.CutSuffix(k, ":"); ok {
			var decoded any
			dec := json.NewDecoder(strings.NewReader(v))
			dec.UseNumber()
			if err := dec.Decode(&decoded); err != nil {
				return nil, fmt.Errorf("param %s: %w", raw, err)
			}
			out[raw] = decoded
			continue
		}
		out[k] = v
	}
	return out, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
