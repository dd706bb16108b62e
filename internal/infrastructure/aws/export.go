package aws

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const Scheme = "s3"

// ObjectPutter is the slice of the S3 client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Location is an object in a bucket.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return Scheme + "://" + l.Bucket + "/" + l.Key
}

// IsS3URL reports whether target names an object store location.
func IsS3URL(target string) bool {
	return strings.HasPrefix(target, Scheme+"://")
}

// ParseLocation parses s3://bucket/key. The key may be empty.
func ParseLocation(target string) (Location, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Location{}, fmt.Errorf("invalid s3 url %q: %w", target, err)
	}
	if u.Scheme != Scheme || u.Host == "" {
		return Location{}, fmt.Errorf("invalid s3 url %q: want s3://bucket/key", target)
	}
	return Location{Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}, nil
}

type Uploader struct {
	client ObjectPutter
}

func NewUploader(client ObjectPutter) *Uploader {
	return &Uploader{client: client}
}

// Upload stores body at loc.
func (u *Uploader) Upload(ctx context.Context, loc Location, body io.Reader, contentType string) error {
	if loc.Bucket == "" || loc.Key == "" {
		return fmt.Errorf("upload needs a bucket and a key, got %q", loc.String())
	}
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(loc.Bucket),
		Key:         aws.String(loc.Key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", loc, err)
	}
	return nil
}
