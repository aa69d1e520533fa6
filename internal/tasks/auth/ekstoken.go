// Package auth contains credential material tasks that do not call a data
// service, currently the EKS bearer token generator.
package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

const (
	// Kubernetes expects this prefix on EKS bearer tokens.
	tokenPrefix = "k8s-aws-v1."

	clusterHeader     = "x-k8s-aws-id"
	defaultExpiration = 600 * time.Second
)

// EksToken builds an EKS bearer token: a presigned STS GetCallerIdentity
// URL bound to the cluster name. Signing is local, no request is sent.
type EksToken struct {
	connection.Connection `yaml:",inline"`

	ClusterName       string `yaml:"clusterName"`
	ExpirationSeconds int64  `yaml:"expirationSeconds,omitempty"`
}

type EksTokenOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func init() {
	tasks.Register("aws.auth.ekstoken", func() tasks.Task { return &EksToken{} })
}

func (t *EksToken) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	clusterName, err := rc.Render(t.ClusterName)
	if err != nil {
		return nil, err
	}
	if clusterName == "" {
		return nil, fmt.Errorf("clusterName is required")
	}

	cfg, err := t.Connection.Resolve(rc)
	if err != nil {
		return nil, err
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required to build an EKS token")
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	expiration := defaultExpiration
	if t.ExpirationSeconds > 0 {
		expiration = time.Duration(t.ExpirationSeconds) * time.Second
	}
	expiresAt := time.Now().Add(expiration)

	presigner := sts.NewPresignClient(sts.NewFromConfig(awsCfg), func(o *sts.PresignOptions) {
		o.ClientOptions = append(o.ClientOptions, func(opts *sts.Options) {
			opts.APIOptions = append(opts.APIOptions,
				smithyhttp.AddHeaderValue(clusterHeader, clusterName),
				smithyhttp.AddHeaderValue("X-Amz-Expires", strconv.FormatInt(int64(expiration/time.Second), 10)),
			)
		})
	})

	signed, err := presigner.PresignGetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to presign token request for cluster %s: %w", clusterName, err)
	}

	token := tokenPrefix + base64.RawURLEncoding.EncodeToString([]byte(signed.URL))
	rc.Logger().WithField("clusterName", clusterName).Debug("Generated EKS token")

	return EksTokenOutput{Token: token, ExpiresAt: expiresAt}, nil
}
