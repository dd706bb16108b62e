package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ExportConfig holds the clients used to ship stats exports off the machine.
type ExportConfig struct {
	Region string
	S3     *s3.Client
}

// NewExportConfig resolves credentials through the default AWS chain
// (environment, shared config, instance role) pinned to region.
func NewExportConfig(ctx context.Context, region string) (*ExportConfig, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config for %s: %w", region, err)
	}

	return &ExportConfig{
		Region: region,
		S3:     s3.NewFromConfig(cfg),
	}, nil
}

// Uploader returns an Uploader writing through the configured S3 client.
func (c *ExportConfig) Uploader() *Uploader {
	return NewUploader(c.S3)
}
