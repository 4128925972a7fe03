package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/desyatkoff/hydock/internal/control/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hydockctl",
		Short:         "Control a running hydock dock",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("socket", "", "path to hydock control socket")
	root.PersistentFlags().Duration("timeout", 3*time.Second, "control request timeout")

	root.AddCommand(
		newEntriesCmd(),
		newStatusCmd(),
		newDispatchCmd("focus", "Focus an application, launching it when it has no window", (*client.Client).Focus),
		newDispatchCmd("close", "Close an application's first window, launching it when it has none", (*client.Client).Close),
		newLaunchCmd(),
		newReloadCmd(),
		newMetricsCmd(),
		newHistoryCmd(),
		newCheckCmd(),
	)
	return root
}

// connect builds a client and a request context from the persistent flags.
func connect(cmd *cobra.Command) (*client.Client, context.Context, context.CancelFunc, error) {
	socket, _ := cmd.Flags().GetString("socket")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	cli, err := client.New(socket)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create client: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		return cli, ctx, cancel, nil
	}
	return cli, ctx, func() {}, nil
}
