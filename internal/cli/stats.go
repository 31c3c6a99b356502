package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show analytics summary for an agent",
		Run:   runStats,
	}
	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	var out map[string]any
	path := "/api/v1/analytics/queries"
	if agent := defaultAgent(); agent != "" {
		path += "?agent_id=" + agent
	}
	if err := apiCall("GET", path, nil, &out); err != nil {
		exitErr("stats", err)
	}
	printJSON(out)
}
