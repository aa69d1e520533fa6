package emr

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr/types"

	"github.com/flowstack-io/plugin-aws/internal/runner"
)

// StepConfig describes one Hadoop step. Each entry of Commands is split on
// spaces before being handed to the step, so a whole spark-submit invocation
// can be written as a single string.
type StepConfig struct {
	Name            string   `yaml:"name"`
	Jar             string   `yaml:"jar"`
	MainClass       string   `yaml:"mainClass,omitempty"`
	Commands        []string `yaml:"commands,omitempty"`
	ActionOnFailure string   `yaml:"actionOnFailure,omitempty"`
}

func (s StepConfig) toStep(rc *runner.RunContext) (types.StepConfig, error) {
	name, err := rc.Render(s.Name)
	if err != nil {
		return types.StepConfig{}, err
	}
	jar, err := rc.Render(s.Jar)
	if err != nil {
		return types.StepConfig{}, err
	}
	if name == "" || jar == "" {
		return types.StepConfig{}, fmt.Errorf("step name and jar are required")
	}

	action := types.ActionOnFailureTerminateCluster
	if s.ActionOnFailure != "" {
		rendered, err := rc.Render(s.ActionOnFailure)
		if err != nil {
			return types.StepConfig{}, err
		}
		action = types.ActionOnFailure(rendered)
	}

	hadoopStep := &types.HadoopJarStepConfig{Jar: aws.String(jar)}
	if s.MainClass != "" {
		mainClass, err := rc.Render(s.MainClass)
		if err != nil {
			return types.StepConfig{}, err
		}
		hadoopStep.MainClass = aws.String(mainClass)
	}

	commands := make([]string, 0, len(s.Commands))
	for _, command := range s.Commands {
		rendered, err := rc.Render(command)
		if err != nil {
			return types.StepConfig{}, err
		}
		commands = append(commands, rendered)
	}
	hadoopStep.Args = splitCommands(commands)

	return types.StepConfig{
		Name:            aws.String(name),
		ActionOnFailure: action,
		HadoopJarStep:   hadoopStep,
	}, nil
}

// splitCommands flattens each command string into individual arguments.
func splitCommands(commands []string) []string {
	if len(commands) == 0 {
		return nil
	}
	args := make([]string, 0, len(commands))
	for _, command := range commands {
		args = append(args, strings.Fields(command)...)
	}
	return args
}

func buildSteps(rc *runner.RunContext, configs []StepConfig) ([]types.StepConfig, error) {
	steps := make([]types.StepConfig, 0, len(configs))
	for _, config := range configs {
		step, err := config.toStep(rc)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}
