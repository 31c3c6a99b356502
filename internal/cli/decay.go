package cli

import "github.com/spf13/cobra"

func init() {
	decayCmd := &cobra.Command{
		Use:   "decay",
		Short: "Show per-agent decay status",
		Run:   runDecayStatus,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Manually trigger a decay sweep",
		Run:   runDecaySweep,
	}
	decayCmd.AddCommand(sweepCmd)

	RootCmd.AddCommand(decayCmd)
}

func runDecayStatus(cmd *cobra.Command, args []string) {
	var out map[string]any
	path := "/api/v1/decay/status?agent_id=" + defaultAgent()
	if err := apiCall("GET", path, nil, &out); err != nil {
		exitErr("decay status", err)
	}
	printJSON(out)
}

func runDecaySweep(cmd *cobra.Command, args []string) {
	var out map[string]any
	body := map[string]any{}
	if agent := defaultAgent(); agent != "" {
		body["agent_id"] = agent
	}
	if err := apiCall("POST", "/api/v1/decay/sweep", body, &out); err != nil {
		exitErr("decay sweep", err)
	}
	printJSON(out)
}
