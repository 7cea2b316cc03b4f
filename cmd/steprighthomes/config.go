package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"

	"steprighthomes/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	if path := cCtx.String("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 30
	}

	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 50
	}

	if c.CookieHashKey == "" || c.CookieBlockKey == "" {
		if c.Environment != "development" {
			return nil, fmt.Errorf("set COOKIE_HASH_KEY and COOKIE_BLOCK_KEY")
		}
		// Sessions won't survive a restart, which is fine locally.
		c.CookieHashKey = base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
		c.CookieBlockKey = base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
		logrus.Warn("cookie keys not set, generated ephemeral keys")
	}

	switch c.PreviewBackend {
	case types.PreviewBackendMemory, types.PreviewBackendRedis:
	case types.PreviewBackendS3:
		if c.S3BucketName == "" {
			return nil, fmt.Errorf("set S3_BUCKET_NAME for the s3 preview backend")
		}
	default:
		return nil, fmt.Errorf("unknown PREVIEW_BACKEND %q", c.PreviewBackend)
	}

	switch c.LeadTransport {
	case types.LeadTransportLog:
	case types.LeadTransportSES:
		if c.LeadFromEmail == "" || c.LeadToEmail == "" {
			return nil, fmt.Errorf("set LEAD_FROM_EMAIL and LEAD_TO_EMAIL for the ses lead transport")
		}
	default:
		return nil, fmt.Errorf("unknown LEAD_TRANSPORT %q", c.LeadTransport)
	}

	return c, nil
}

// needsAWS reports whether any configured backend talks to AWS.
func needsAWS(c *types.Config) bool {
	return c.PreviewBackend == types.PreviewBackendS3 ||
		c.LeadTransport == types.LeadTransportSES ||
		c.SNSTopicARN != ""
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
