package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
)

// ErrDisabled is returned by uploads when no bucket is configured
var ErrDisabled = errors.New("media storage is not configured")

// Store saves public media and returns its URL
type Store interface {
	Upload(ctx context.Context, prefix, filename string, body io.ReadSeeker, contentType string) (string, error)
}

// Config holds S3 compatible storage settings
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// Endpoint is empty for AWS, set for Spaces/MinIO style providers
	Endpoint  string
	PublicURL string
}

// S3Store uploads to an S3 compatible bucket
type S3Store struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

// NewS3Store creates an S3 session for the configured provider
func NewS3Store(config Config) (*S3Store, error) {
	awsConfig := &aws.Config{
		Credentials: credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Region:      aws.String(config.Region),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	publicURL := config.PublicURL
	if publicURL == "" {
		if config.Endpoint != "" {
			publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(config.Endpoint, "/"), config.Bucket)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", config.Bucket, config.Region)
		}
	}

	return newS3Store(s3.New(sess), config.Bucket, publicURL), nil
}

func newS3Store(client s3iface.S3API, bucket, publicURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload stores body under prefix with a unique name and returns its URL
func (s *S3Store) Upload(ctx context.Context, prefix, filename string, body io.ReadSeeker, contentType string) (string, error) {
	key := ObjectKey(prefix, filename)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// ObjectKey builds a collision free key keeping the file extension
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(prefix, "/"), uuid.New().String()+ext)
}

// Disabled is the Store used when uploads are not configured
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.ReadSeeker, string) (string, error) {
	return "", ErrDisabled
}
