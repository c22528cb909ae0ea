package main

import (
	"context"

	"github.com/deppfellow/go-rpc-demo/internal/api"
	"github.com/deppfellow/go-rpc-demo/internal/client"
	"github.com/deppfellow/go-rpc-demo/internal/lib/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

func newCallCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call a procedure on a running server and print the JSON reply",
	}
	cmd.PersistentFlags().StringVar(&baseURL, "url", defaultBaseURL, "server base URL")

	// run builds the client, invokes fn and prints its result. A rejected
	// call prints the server's error body before failing.
	run := func(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) (any, error)) error {
		c, err := client.New(baseURL)
		if err != nil {
			return err
		}

		result, err := fn(cmd.Context(), c)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				_ = utils.WriteJSON(cmd.ErrOrStderr(), apiErr.Body)
			}
			return err
		}

		return utils.WriteJSON(cmd.OutOrStdout(), result)
	}

	hello := &cobra.Command{
		Use:   "hello",
		Short: "GET /hello",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.Hello(ctx)
			})
		},
	}

	var name string
	greet := &cobra.Command{
		Use:   "greet",
		Short: "GET /greet?name=...",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.Greet(ctx, api.GreetQuery{Name: name})
			})
		},
	}
	greet.Flags().StringVar(&name, "name", "", "name to greet")

	var message string
	echo := &cobra.Command{
		Use:   "echo",
		Short: "POST /echo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.Echo(ctx, api.EchoRequest{Message: message})
			})
		},
	}
	echo.Flags().StringVar(&message, "message", "", "message to echo back")

	var (
		a, b      float64
		operation string
	)
	calculate := &cobra.Command{
		Use:   "calculate",
		Short: "POST /calculate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.Calculate(ctx, api.CalculationRequest{A: a, B: b, Operation: api.Operation(operation)})
			})
		},
	}
	calculate.Flags().Float64Var(&a, "a", 0, "left operand")
	calculate.Flags().Float64Var(&b, "b", 0, "right operand")
	calculate.Flags().StringVar(&operation, "operation", string(api.OperationAdd), "add, subtract, multiply or divide")

	status := &cobra.Command{
		Use:   "status",
		Short: "GET /status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.Status(ctx)
			})
		},
	}

	cmd.AddCommand(hello, greet, echo, calculate, status)

	return cmd
}
