package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server health, db, and embedder status",
		Run:   runStatus,
	}
	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	var out map[string]any
	if err := apiCall("GET", "/health", nil, &out); err != nil {
		exitErr("status", err)
	}
	printJSON(out)
}
