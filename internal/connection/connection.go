// Package connection resolves AWS client configuration for task adapters.
//
// Every task carries the same set of connection properties; this package
// turns them into a configured aws.Config honoring a strict credential
// precedence: STS assume-role, then static keys, then the SDK default
// discovery chain.
package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/sirupsen/logrus"
)

// MinSessionDuration is the minimum (and default) lifetime of an assumed
// role session, as enforced by AWS STS.
const MinSessionDuration = 15 * time.Minute

// ClientConfig holds already-rendered connection values. Template expansion
// happens before construction; this package never renders expressions.
type ClientConfig struct {
	// Static credential triple.
	AccessKeyID  string
	SecretKeyID  string
	SessionToken string

	// Service endpoint control.
	Region           string
	EndpointOverride string

	// STS assume-role delegation.
	STSRoleArn             string
	STSRoleExternalID      string
	STSRoleSessionName     string
	STSEndpointOverride    string
	STSRoleSessionDuration time.Duration
}

// CredentialsKind identifies which credential source the precedence rule
// selected for a given ClientConfig.
type CredentialsKind int

const (
	CredentialsDefault CredentialsKind = iota
	CredentialsStatic
	CredentialsStaticSession
	CredentialsAssumeRole
)

func (k CredentialsKind) String() string {
	switch k {
	case CredentialsAssumeRole:
		return "assume-role"
	case CredentialsStaticSession:
		return "static-session"
	case CredentialsStatic:
		return "static"
	default:
		return "default-chain"
	}
}

// Kind applies the credential precedence rule: an STS role ARN always wins,
// then a complete static key pair, then the SDK default chain. Blank values
// count as unset.
func (c ClientConfig) Kind() CredentialsKind {
	switch {
	case c.STSRoleArn != "":
		return CredentialsAssumeRole
	case c.AccessKeyID != "" && c.SecretKeyID != "":
		if c.SessionToken != "" {
			return CredentialsStaticSession
		}
		return CredentialsStatic
	default:
		return CredentialsDefault
	}
}

// Validate fails fast on configuration that cannot produce a working
// client. Resolution itself performs no network calls, so this is the only
// place configuration mistakes surface before the first SDK request.
func (c ClientConfig) Validate() error {
	if c.Kind() != CredentialsAssumeRole {
		if (c.AccessKeyID == "") != (c.SecretKeyID == "") {
			return &ConfigError{Reason: "accessKeyId and secretKeyId must be provided together"}
		}
	}
	if d := c.STSRoleSessionDuration; d != 0 && d < MinSessionDuration {
		return &ConfigError{Reason: fmt.Sprintf("stsRoleSessionDuration must be at least %s", MinSessionDuration)}
	}
	return nil
}

// ResolveCredentials builds the credentials provider selected by Kind.
// A nil provider means the SDK default discovery chain should be used.
// No credentials are fetched here; invalid keys or a denied assume-role
// surface on the first authenticated call.
func ResolveCredentials(ctx context.Context, c ClientConfig) (aws.CredentialsProvider, error) {
	switch c.Kind() {
	case CredentialsAssumeRole:
		return assumeRoleProvider(ctx, c)
	case CredentialsStaticSession:
		logrus.Debug("Using static AWS credentials with session token")
		return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretKeyID, c.SessionToken), nil
	case CredentialsStatic:
		logrus.Debug("Using static AWS credentials")
		return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretKeyID, ""), nil
	default:
		logrus.Debug("No AWS credentials provided, deferring to the default provider chain")
		return nil, nil
	}
}

// Load resolves credentials and returns an aws.Config ready to construct a
// service client: credentials per precedence, region binding and endpoint
// override. Each call produces an independent configuration; nothing is
// cached across task invocations since secrets may change between runs.
func Load(ctx context.Context, c ClientConfig) (aws.Config, error) {
	if err := c.Validate(); err != nil {
		return aws.Config{}, err
	}

	provider, err := ResolveCredentials(ctx, c)
	if err != nil {
		return aws.Config{}, err
	}

	opts := []func(*config.LoadOptions) error{}
	if provider != nil {
		opts = append(opts, config.WithCredentialsProvider(provider))
	}
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.EndpointOverride != "" {
		logrus.WithField("endpoint", c.EndpointOverride).Debug("Using custom AWS endpoint")
		opts = append(opts, config.WithBaseEndpoint(c.EndpointOverride))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// assumeRoleProvider builds an auto-refreshing assume-role provider backed
// by a dedicated STS client. The STS client resolves its endpoint from
// STSEndpointOverride only; the service client's endpoint override must not
// leak into the assume-role call, and vice versa.
func assumeRoleProvider(ctx context.Context, c ClientConfig) (aws.CredentialsProvider, error) {
	stsCfg, err := stsConfig(ctx, c)
	if err != nil {
		return nil, err
	}

	sessionName := c.STSRoleSessionName
	if sessionName == "" {
		sessionName = fmt.Sprintf("plugin-aws-%d", time.Now().UnixMilli())
	}
	sessionDuration := c.STSRoleSessionDuration
	if sessionDuration == 0 {
		sessionDuration = MinSessionDuration
	}

	logrus.WithFields(logrus.Fields{
		"role":    c.STSRoleArn,
		"session": sessionName,
	}).Debug("Using STS assume-role credentials")

	provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(stsCfg), c.STSRoleArn, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = sessionName
		o.Duration = sessionDuration
		if c.STSRoleExternalID != "" {
			o.ExternalID = aws.String(c.STSRoleExternalID)
		}
	})

	// The cache refreshes the assumed session before expiry.
	return aws.NewCredentialsCache(provider), nil
}

// stsConfig loads the configuration for the STS client used by assume-role.
// It shares the region with the main client but keeps its own endpoint; the
// base credentials for the AssumeRole call come from the default chain.
func stsConfig(ctx context.Context, c ClientConfig) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.STSEndpointOverride != "" {
		opts = append(opts, config.WithBaseEndpoint(c.STSEndpointOverride))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load STS config: %w", err)
	}
	return cfg, nil
}
