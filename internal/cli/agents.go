package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List agents, or show one with --agent",
		Run:   runAgents,
	}
	RootCmd.AddCommand(cmd)
}

func runAgents(cmd *cobra.Command, args []string) {
	var out map[string]any
	path := "/api/v1/agents"
	if agent := defaultAgent(); agent != "" {
		path += "/" + agent
	}
	if err := apiCall("GET", path, nil, &out); err != nil {
		exitErr("agents", err)
	}
	printJSON(out)
}
