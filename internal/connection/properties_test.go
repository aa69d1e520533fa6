package connection

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapRenderer substitutes whole-value expressions from a fixed variable
// table, standing in for the host expression engine.
type mapRenderer map[string]string

func (m mapRenderer) Render(value string) (string, error) {
	if replacement, ok := m[value]; ok {
		return replacement, nil
	}
	return value, nil
}

func TestConnectionResolve(t *testing.T) {
	renderer := mapRenderer{
		"${ .secrets.accessKey }": "AKIARENDERED",
		"${ .secrets.secretKey }": "rendered-secret",
	}

	conn := Connection{
		AccessKeyID: "${ .secrets.accessKey }",
		SecretKeyID: "${ .secrets.secretKey }",
		Region:      "eu-west-1",
	}

	cfg, err := conn.Resolve(renderer)
	require.NoError(t, err)

	assert.Equal(t, "AKIARENDERED", cfg.AccessKeyID)
	assert.Equal(t, "rendered-secret", cfg.SecretKeyID)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, CredentialsStatic, cfg.Kind())
}

func TestConnectionResolveDefaultsSessionDuration(t *testing.T) {
	cfg, err := Connection{}.Resolve(mapRenderer{})
	require.NoError(t, err)
	assert.Equal(t, MinSessionDuration, cfg.STSRoleSessionDuration)
}

func TestConnectionResolveParsesISODuration(t *testing.T) {
	cfg, err := Connection{StsRoleSessionDuration: "PT30M"}.Resolve(mapRenderer{})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.STSRoleSessionDuration)
}

func TestConnectionResolveRejectsBadDuration(t *testing.T) {
	_, err := Connection{StsRoleSessionDuration: "soon"}.Resolve(mapRenderer{})
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.True(t, strings.Contains(configErr.Error(), "invalid duration"))
}
