package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// AwsCLI runs `aws` subcommands as subprocesses with the resolved
// credentials and region injected through the environment.
type AwsCLI struct {
	connection.Connection `yaml:",inline"`

	Commands []string          `yaml:"commands"`
	Env      map[string]string `yaml:"env,omitempty"`
}

type CommandResult struct {
	Command string `json:"command"`
	Output  any    `json:"output,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
}

type AwsCLIOutput struct {
	Results []CommandResult `json:"results"`
}

func init() {
	tasks.Register("aws.cli", func() tasks.Task { return &AwsCLI{} })
}

func (t *AwsCLI) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	if len(t.Commands) == 0 {
		return nil, fmt.Errorf("no commands to run")
	}

	env, err := t.buildEnv(ctx, rc)
	if err != nil {
		return nil, err
	}

	out := AwsCLIOutput{Results: make([]CommandResult, 0, len(t.Commands))}
	for _, raw := range t.Commands {
		command, err := rc.Render(raw)
		if err != nil {
			return nil, err
		}
		result, err := runCommand(ctx, rc, command, env)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, result)
	}
	return out, nil
}

// buildEnv resolves the connection once and maps it onto the standard AWS
// CLI environment variables, so the subprocess reuses the same credential
// precedence as the SDK-backed tasks.
func (t *AwsCLI) buildEnv(ctx context.Context, rc *runner.RunContext) ([]string, error) {
	cfg, err := t.Connection.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	env := os.Environ()
	env = append(env, "AWS_DEFAULT_OUTPUT=json")
	if awsCfg.Region != "" {
		env = append(env, "AWS_DEFAULT_REGION="+awsCfg.Region, "AWS_REGION="+awsCfg.Region)
	}
	if cfg.EndpointOverride != "" {
		env = append(env, "AWS_ENDPOINT_URL="+cfg.EndpointOverride)
	}
	if awsCfg.Credentials != nil {
		creds, err := awsCfg.Credentials.Retrieve(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve credentials: %w", err)
		}
		env = append(env,
			"AWS_ACCESS_KEY_ID="+creds.AccessKeyID,
			"AWS_SECRET_ACCESS_KEY="+creds.SecretAccessKey,
		)
		if creds.SessionToken != "" {
			env = append(env, "AWS_SESSION_TOKEN="+creds.SessionToken)
		}
	}
	extra, err := rc.RenderStringMap(t.Env)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env, nil
}

// runCommand hands the command to a shell so pipes, redirects and quoted
// arguments behave the way they do in a terminal.
func runCommand(ctx context.Context, rc *runner.RunContext, command string, env []string) (CommandResult, error) {
	if strings.TrimSpace(command) == "" {
		return CommandResult{}, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = env
	cmd.Dir = rc.WorkingDir()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	rc.Logger().WithField("command", command).Debug("Running aws command")
	if err := cmd.Run(); err != nil {
		return CommandResult{}, fmt.Errorf("command %q failed: %w: %s", command, err, stderr.String())
	}

	result := CommandResult{Command: command, Stderr: stderr.String()}
	trimmed := bytes.TrimSpace(stdout.Bytes())
	if len(trimmed) == 0 {
		return result, nil
	}
	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		result.Output = string(trimmed)
	} else {
		result.Output = decoded
	}
	return result, nil
}
