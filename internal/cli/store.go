package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "store [type] [content...]",
		Short: "Directly write a fact, decision, task, event, or project",
		Long:  "store fact|decision|task|event|project <content>. Runs dedup on facts/decisions/tasks/events per the server's direct-write contract.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runStore,
	}
	cmd.Flags().Int("priority", 50, "task priority (tasks only)")
	cmd.Flags().String("description", "", "description / rationale field")
	cmd.Flags().StringSlice("tags", nil, "tags to attach")
	RootCmd.AddCommand(cmd)
}

func runStore(cmd *cobra.Command, args []string) {
	itemType := args[0]
	content := strings.Join(args[1:], " ")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	description, _ := cmd.Flags().GetString("description")
	priority, _ := cmd.Flags().GetInt("priority")

	var path string
	body := map[string]any{"agent_id": defaultAgent(), "tags": tags}

	switch itemType {
	case "fact":
		path = "/api/v1/facts"
		body["content"] = content
	case "decision":
		path = "/api/v1/decisions"
		body["title"] = content
		body["decision"] = content
		body["rationale"] = description
	case "task":
		path = "/api/v1/tasks"
		body["title"] = content
		body["description"] = description
		body["priority"] = priority
	case "event":
		path = "/api/v1/events"
		body["title"] = content
		body["description"] = description
		body["event_type"] = "note"
	case "project":
		path = "/api/v1/projects"
		body["name"] = content
		body["description"] = description
	default:
		exitErr("store", fmt.Errorf("unknown type %q (want fact|decision|task|event|project)", itemType))
		return
	}

	var out map[string]any
	if err := apiCall("POST", path, body, &out); err != nil {
		exitErr("store", err)
	}
	printJSON(out)
}
