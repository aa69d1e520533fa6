package auth

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstack-io/plugin-aws/internal/runner"
)

// Presigning is a local signature computation, so the whole task runs
// without touching the network.
func TestEksToken(t *testing.T) {
	rc, err := runner.NewRunContext(t.TempDir())
	require.NoError(t, err)

	task := &EksToken{ClusterName: "my-cluster"}
	task.AccessKeyID = "AKIAEXAMPLE"
	task.SecretKeyID = "secret"
	task.Region = "eu-central-1"

	out, err := task.Run(context.Background(), rc)
	require.NoError(t, err)
	output := out.(EksTokenOutput)

	require.True(t, strings.HasPrefix(output.Token, "k8s-aws-v1."))

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(output.Token, "k8s-aws-v1."))
	require.NoError(t, err)

	signed, err := url.Parse(string(decoded))
	require.NoError(t, err)
	assert.Equal(t, "sts.eu-central-1.amazonaws.com", signed.Host)
	assert.Equal(t, "GetCallerIdentity", signed.Query().Get("Action"))
	assert.NotEmpty(t, signed.Query().Get("X-Amz-Signature"))
	assert.False(t, output.ExpiresAt.IsZero())
}

func TestEksTokenRequiresRegion(t *testing.T) {
	rc, err := runner.NewRunContext(t.TempDir())
	require.NoError(t, err)

	task := &EksToken{ClusterName: "my-cluster"}
	task.AccessKeyID = "AKIAEXAMPLE"
	task.SecretKeyID = "secret"

	_, err = task.Run(context.Background(), rc)
	assert.Error(t, err)
}

func TestEksTokenRequiresClusterName(t *testing.T) {
	rc, err := runner.NewRunContext(t.TempDir())
	require.NoError(t, err)

	task := &EksToken{}
	task.Region = "eu-central-1"

	_, err = task.Run(context.Background(), rc)
	assert.Error(t, err)
}
