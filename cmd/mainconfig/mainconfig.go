package mainconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/nutrition-consult/internal/config"
)

// defaultSESRegion is the SES region closest to the merchant.
const defaultSESRegion = "ap-south-1"

// LoadAWSConfig builds the SDK config for the SES confirmation sender. Static
// keys are used only when both halves are set; otherwise the default chain
// (env, shared profile, instance role) applies.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	region := strings.TrimSpace(cfg.AWSRegion)
	if region == "" {
		region = defaultSESRegion
	}
	loaders := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("mainconfig: load aws config: %w", err)
	}
	return awsCfg, nil
}

// NewSESClient builds the SES v2 client, honouring AWS_ENDPOINT_OVERRIDE.
func NewSESClient(awsCfg aws.Config, cfg *appconfig.Config) *sesv2.Client {
	return sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
