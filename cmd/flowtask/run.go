package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

var (
	taskFile string
	varsFile string
	taskVars []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single task from a YAML definition",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := os.ReadFile(taskFile)
		if err != nil {
			return fmt.Errorf("failed to read task file: %w", err)
		}

		var header struct {
			Type string `yaml:"type"`
		}
		if err := yaml.Unmarshal(data, &header); err != nil {
			return fmt.Errorf("failed to decode task file: %w", err)
		}
		task, err := tasks.Create(header.Type)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, task); err != nil {
			return fmt.Errorf("failed to decode task fields: %w", err)
		}

		variables, err := loadVariables(varsFile, taskVars)
		if err != nil {
			return err
		}

		workingDir, err := os.MkdirTemp("", "flowtask-")
		if err != nil {
			return fmt.Errorf("failed to create working directory: %w", err)
		}

		opts := []runner.Option{
			runner.WithLogger(logrus.WithField("task", header.Type)),
			runner.WithVariables(variables.AsMap()),
		}
		if cfg.Storage.Dir != "" {
			storage, err := runner.NewLocalStorage(cfg.Storage.Dir)
			if err != nil {
				return err
			}
			opts = append(opts, runner.WithStorage(storage))
		}
		rc, err := runner.NewRunContext(workingDir, opts...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		output, err := task.Run(ctx, rc)
		if err != nil {
			return fmt.Errorf("task %s failed: %w", header.Type, err)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		for _, metric := range rc.Metrics() {
			fields := logrus.Fields{"name": metric.Name, "kind": metric.Kind}
			if metric.Kind == models.MetricTimer {
				fields["duration"] = metric.Duration
			} else {
				fields["value"] = metric.Value
			}
			logrus.WithFields(fields).Info("Metric")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&taskFile, "file", "f", "", "Path to the task YAML file")
	runCmd.Flags().StringVar(&varsFile, "vars-file", "", "Path to a YAML file of run variables")
	runCmd.Flags().StringArrayVar(&taskVars, "var", nil, "Run variable as key=value (repeatable)")
	if err := runCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(runCmd)
}

// loadVariables merges the vars file with --var pairs; the pairs win.
func loadVariables(file string, pairs []string) (models.BasicConfig, error) {
	variables := models.BasicConfig{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read vars file: %w", err)
		}
		if err := yaml.Unmarshal(data, &variables); err != nil {
			return nil, fmt.Errorf("failed to decode vars file: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		variables[key] = value
	}
	return variables, nil
}
