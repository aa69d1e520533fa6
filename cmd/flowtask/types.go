package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the registered task types",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, taskType := range tasks.Types() {
			fmt.Println(taskType)
		}
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
