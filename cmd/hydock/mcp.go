package main

import (
	"github.com/spf13/cobra"

	"github.com/desyatkoff/hydock/internal/control/client"
	"github.com/desyatkoff/hydock/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose a running dock as MCP tools",
	Long: `Start an MCP server that forwards tool calls to a running dock over its
control socket. Tools: dock_entries, dock_status, focus_app, close_app and
run_launcher.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		socket, _ := cmd.Flags().GetString("socket")

		cli, err := client.New(socket)
		if err != nil {
			return err
		}
		return mcpserver.New(cli, version).Serve(transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "transport: stdio or streamable-http")
	mcpCmd.Flags().Int("port", 8080, "port for the streamable-http transport")
	mcpCmd.Flags().String("socket", "", "control socket of the running dock")
	rootCmd.AddCommand(mcpCmd)
}
