package ecr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// GetAuthToken fetches a registry authorization token and decodes it into
// the username/password pair a docker login expects.
type GetAuthToken struct {
	connection.Connection `yaml:",inline"`
}

type GetAuthTokenOutput struct {
	Username      string    `json:"username"`
	Password      string    `json:"password"`
	ProxyEndpoint string    `json:"proxyEndpoint"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

func init() {
	tasks.Register("aws.ecr.getauthtoken", func() tasks.Task { return &GetAuthToken{} })
}

func (t *GetAuthToken) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	cfg, err := t.Connection.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := ecr.NewFromConfig(awsCfg)

	resp, err := client.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization token: %w", err)
	}
	if len(resp.AuthorizationData) == 0 {
		return nil, fmt.Errorf("no authorization data returned")
	}

	data := resp.AuthorizationData[0]
	decoded, err := base64.StdEncoding.DecodeString(aws.ToString(data.AuthorizationToken))
	if err != nil {
		return nil, fmt.Errorf("failed to decode authorization token: %w", err)
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return nil, fmt.Errorf("malformed authorization token")
	}

	return GetAuthTokenOutput{
		Username:      username,
		Password:      password,
		ProxyEndpoint: aws.ToString(data.ProxyEndpoint),
		ExpiresAt:     aws.ToTime(data.ExpiresAt),
	}, nil
}
