package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions for the default agent",
		Run:   runSessions,
	}
	cmd.Flags().Int("limit", 50, "max sessions")
	RootCmd.AddCommand(cmd)
}

func runSessions(cmd *cobra.Command, args []string) {
	var out map[string]any
	limit, _ := cmd.Flags().GetInt("limit")
	path := "/api/v1/sessions?agent_id=" + defaultAgent() + "&limit=" + strconv.Itoa(limit)
	if err := apiCall("GET", path, nil, &out); err != nil {
		exitErr("sessions", err)
	}
	printJSON(out)
}
