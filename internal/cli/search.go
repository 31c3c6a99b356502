package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Direct vector search over an agent's memory",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}
	cmd.Flags().Int("limit", 20, "max results")
	cmd.Flags().StringSlice("types", nil, "restrict to these item types")
	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	types, _ := cmd.Flags().GetStringSlice("types")

	var out map[string]any
	err := apiCall("POST", "/api/v1/search", map[string]any{
		"query":    strings.Join(args, " "),
		"agent_id": defaultAgent(),
		"limit":    limit,
		"types":    types,
	}, &out)
	if err != nil {
		exitErr("search", err)
	}
	printJSON(out)
}
