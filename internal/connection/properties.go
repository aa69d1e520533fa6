package connection

import (
	"fmt"

	"github.com/flowstack-io/plugin-aws/internal/common"
)

// Renderer expands runtime expressions inside templated task properties.
// The host run context implements it; this package only consumes rendered
// values.
type Renderer interface {
	Render(value string) (string, error)
}

// Connection is the set of templated connection properties shared by every
// task. Tasks embed it (composition, not inheritance) and call Resolve with
// the run context to obtain a concrete ClientConfig.
type Connection struct {
	AccessKeyID  string `yaml:"accessKeyId,omitempty" json:"accessKeyId,omitempty"`
	SecretKeyID  string `yaml:"secretKeyId,omitempty" json:"secretKeyId,omitempty"`
	SessionToken string `yaml:"sessionToken,omitempty" json:"sessionToken,omitempty"`

	Region           string `yaml:"region,omitempty" json:"region,omitempty"`
	EndpointOverride string `yaml:"endpointOverride,omitempty" json:"endpointOverride,omitempty"`

	StsRoleArn          string `yaml:"stsRoleArn,omitempty" json:"stsRoleArn,omitempty"`
	StsRoleExternalID   string `yaml:"stsRoleExternalId,omitempty" json:"stsRoleExternalId,omitempty"`
	StsRoleSessionName  string `yaml:"stsRoleSessionName,omitempty" json:"stsRoleSessionName,omitempty"`
	StsEndpointOverride string `yaml:"stsEndpointOverride,omitempty" json:"stsEndpointOverride,omitempty"`

	// ISO 8601 or Go duration syntax, minimum PT15M.
	StsRoleSessionDuration string `yaml:"stsRoleSessionDuration,omitempty" json:"stsRoleSessionDuration,omitempty"`
}

// Resolve renders every templated property and returns the concrete
// ClientConfig for this invocation.
func (c Connection) Resolve(r Renderer) (ClientConfig, error) {
	rendered := ClientConfig{}

	fields := []struct {
		value  string
		target *string
	}{
		{c.AccessKeyID, &rendered.AccessKeyID},
		{c.SecretKeyID, &rendered.SecretKeyID},
		{c.SessionToken, &rendered.SessionToken},
		{c.Region, &rendered.Region},
		{c.EndpointOverride, &rendered.EndpointOverride},
		{c.StsRoleArn, &rendered.STSRoleArn},
		{c.StsRoleExternalID, &rendered.STSRoleExternalID},
		{c.StsRoleSessionName, &rendered.STSRoleSessionName},
		{c.StsEndpointOverride, &rendered.STSEndpointOverride},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		value, err := r.Render(f.value)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("failed to render connection property: %w", err)
		}
		*f.target = value
	}

	rendered.STSRoleSessionDuration = MinSessionDuration
	if c.StsRoleSessionDuration != "" {
		d, err := common.ParseDuration(c.StsRoleSessionDuration)
		if err != nil {
			return ClientConfig{}, &ConfigError{Reason: err.Error()}
		}
		rendered.STSRoleSessionDuration = d
	}

	return rendered, nil
}
