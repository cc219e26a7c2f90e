package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// OutputEnv selects JSON output for every command when set to "json".
const OutputEnv = "AZSKU_OUTPUT"

func jsonFromEnv() bool {
	return strings.EqualFold(os.Getenv(OutputEnv), "json")
}

// ShouldOutputJSON determines if a command should output JSON based on flags and the environment
func ShouldOutputJSON(cmd *cobra.Command) bool {
	// Handle nil command gracefully (e.g., when called from result rendering without command context)
	if cmd == nil {
		return jsonFromEnv()
	}

	// Check if --json flag was explicitly set
	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	// Check global --json flag
	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return jsonFromEnv()
}

// OutputJSON marshals and prints JSON using display.MarshalJSON
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
