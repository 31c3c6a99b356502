package cli

import "github.com/spf13/cobra"

// RootCmd is hexmem's top-level command.
var RootCmd = &cobra.Command{
	Use:   "hexmem",
	Short: "HexMem client",
	Long:  "A thin CLI over the HexMem memory service. Talks HTTP+JSON to hexmemd; holds no store logic of its own.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "hexmemd base URL (default: $HEXMEM_URL or http://127.0.0.1:8420)")
	RootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "bearer token (default: $HEXMEM_API_KEY)")
	RootCmd.PersistentFlags().StringVar(&agentFlag, "agent", "", "agent id or slug (default: $HEXMEM_AGENT)")
}
