package connection

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		config   ClientConfig
		expected CredentialsKind
	}{
		{
			name:     "no credentials falls back to default chain",
			config:   ClientConfig{},
			expected: CredentialsDefault,
		},
		{
			name: "static key pair",
			config: ClientConfig{
				AccessKeyID: "AKIAEXAMPLE",
				SecretKeyID: "secret",
			},
			expected: CredentialsStatic,
		},
		{
			name: "session token switches to session variant",
			config: ClientConfig{
				AccessKeyID:  "AKIAEXAMPLE",
				SecretKeyID:  "secret",
				SessionToken: "token",
			},
			expected: CredentialsStaticSession,
		},
		{
			name: "role arn wins over static keys",
			config: ClientConfig{
				AccessKeyID:  "AKIAEXAMPLE",
				SecretKeyID:  "secret",
				SessionToken: "token",
				STSRoleArn:   "arn:aws:iam::123456789012:role/task",
			},
			expected: CredentialsAssumeRole,
		},
		{
			name: "role arn alone",
			config: ClientConfig{
				STSRoleArn: "arn:aws:iam::123456789012:role/task",
			},
			expected: CredentialsAssumeRole,
		},
		{
			name: "session token without keys is not static",
			config: ClientConfig{
				SessionToken: "token",
			},
			expected: CredentialsDefault,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.config.Kind())
		})
	}
}

func TestResolveCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("default chain resolves without error and without provider", func(t *testing.T) {
		provider, err := ResolveCredentials(ctx, ClientConfig{})
		require.NoError(t, err)
		assert.Nil(t, provider, "nil provider defers to the SDK default chain")
	})

	t.Run("static provider yields the configured keys", func(t *testing.T) {
		provider, err := ResolveCredentials(ctx, ClientConfig{
			AccessKeyID: "AKIAEXAMPLE",
			SecretKeyID: "secret",
		})
		require.NoError(t, err)
		require.NotNil(t, provider)

		creds, err := provider.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "AKIAEXAMPLE", creds.AccessKeyID)
		assert.Equal(t, "secret", creds.SecretAccessKey)
		assert.Empty(t, creds.SessionToken)
	})

	t.Run("session variant carries the token", func(t *testing.T) {
		provider, err := ResolveCredentials(ctx, ClientConfig{
			AccessKeyID:  "AKIAEXAMPLE",
			SecretKeyID:  "secret",
			SessionToken: "token",
		})
		require.NoError(t, err)

		creds, err := provider.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token", creds.SessionToken)
	})

	t.Run("assume-role builds a refreshing provider without a network call", func(t *testing.T) {
		provider, err := ResolveCredentials(ctx, ClientConfig{
			Region:     "us-east-1",
			STSRoleArn: "arn:aws:iam::123456789012:role/task",
		})
		require.NoError(t, err)
		require.NotNil(t, provider)
		assert.IsType(t, &aws.CredentialsCache{}, provider,
			"assumed credentials must refresh before expiry")
	})
}

func TestLoadRegionAndEndpoint(t *testing.T) {
	ctx := context.Background()

	cfg, err := Load(ctx, ClientConfig{
		AccessKeyID:      "AKIAEXAMPLE",
		SecretKeyID:      "secret",
		Region:           "eu-central-1",
		EndpointOverride: "http://localhost:4566",
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", cfg.Region)
	require.NotNil(t, cfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *cfg.BaseEndpoint)
}

func TestLoadIgnoresBlankEndpointOverride(t *testing.T) {
	cfg, err := Load(context.Background(), ClientConfig{
		AccessKeyID: "AKIAEXAMPLE",
		SecretKeyID: "secret",
		Region:      "us-east-1",
	})
	require.NoError(t, err)
	assert.Nil(t, cfg.BaseEndpoint)
}

// Overrides for the STS client used by assume-role are resolved
// independently from the main service client's overrides.
func TestSTSEndpointIsolation(t *testing.T) {
	ctx := context.Background()
	clientConfig := ClientConfig{
		Region:              "us-east-1",
		STSRoleArn:          "arn:aws:iam::123456789012:role/task",
		EndpointOverride:    "http://service.localhost:4566",
		STSEndpointOverride: "http://sts.localhost:4566",
	}

	serviceCfg, err := Load(ctx, clientConfig)
	require.NoError(t, err)
	require.NotNil(t, serviceCfg.BaseEndpoint)
	assert.Equal(t, "http://service.localhost:4566", *serviceCfg.BaseEndpoint)

	stsCfg, err := stsConfig(ctx, clientConfig)
	require.NoError(t, err)
	require.NotNil(t, stsCfg.BaseEndpoint)
	assert.Equal(t, "http://sts.localhost:4566", *stsCfg.BaseEndpoint)
	assert.Equal(t, "us-east-1", stsCfg.Region, "region is shared with the main client")
}

func TestSTSEndpointNotInheritedFromService(t *testing.T) {
	stsCfg, err := stsConfig(context.Background(), ClientConfig{
		Region:           "us-east-1",
		STSRoleArn:       "arn:aws:iam::123456789012:role/task",
		EndpointOverride: "http://service.localhost:4566",
	})
	require.NoError(t, err)
	assert.Nil(t, stsCfg.BaseEndpoint, "service endpoint must not leak into the STS client")
}

func TestValidate(t *testing.T) {
	t.Run("access key without secret fails fast", func(t *testing.T) {
		err := ClientConfig{AccessKeyID: "AKIAEXAMPLE"}.Validate()
		var configErr *ConfigError
		require.ErrorAs(t, err, &configErr)
	})

	t.Run("secret without access key fails fast", func(t *testing.T) {
		err := ClientConfig{SecretKeyID: "secret"}.Validate()
		require.Error(t, err)
	})

	t.Run("session duration below the STS minimum is rejected", func(t *testing.T) {
		err := ClientConfig{STSRoleSessionDuration: time.Minute}.Validate()
		var configErr *ConfigError
		require.ErrorAs(t, err, &configErr)
	})

	t.Run("zero duration defaults instead of failing", func(t *testing.T) {
		require.NoError(t, ClientConfig{}.Validate())
	})
}
