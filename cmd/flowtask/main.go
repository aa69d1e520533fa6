package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowstack-io/plugin-aws/internal/config"

	// task packages register themselves with the registry
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/athena"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/auth"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/cli"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/cloudformation"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/cloudwatch"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/dynamodb"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/ecr"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/emr"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/eventbridge"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/glue"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/kinesis"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/lambda"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/s3"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/sns"
	_ "github.com/flowstack-io/plugin-aws/internal/tasks/sqs"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "flowtask",
	Short: "Run AWS tasks from YAML definitions",
	Long: `Run AWS tasks from YAML definitions.

If no config file is specified, flowtask looks for config.yaml in the
current directory, ./config and ~/.config/flowtask.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(configFile)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file (optional)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
