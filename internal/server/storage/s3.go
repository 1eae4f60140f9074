package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	sc "github.com/lojabox/lojabox/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	deleteObjects = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
		return c.DeleteObjects(ctx, in, optFns...)
	}
)

// S3Store implements ObjectStore over an S3-compatible backend (MinIO in
// development). Objects are addressed path-style under a single bucket.
type S3Store struct {
	config *sc.Config
}

// NewS3Store constructs an S3Store using the server configuration.
func NewS3Store(cfg *sc.Config) *S3Store {
	return &S3Store{config: cfg}
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload stores body under key with overwrite semantics: a PUT of an
// existing key silently replaces the old object.
func (s *S3Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := putObject(client, ctx, in); err != nil {
		return fmt.Errorf("s3 put error: %w", err)
	}
	return nil
}

// Remove deletes the objects at the given keys in a single batch call.
func (s *S3Store) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
	}

	_, err = deleteObjects(client, ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.config.S3Bucket),
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		return fmt.Errorf("s3 delete error: %w", err)
	}
	return nil
}

// PublicURL resolves the path-style public URL for key:
// {endpoint}/{bucket}/{key}.
func (s *S3Store) PublicURL(key string) string {
	base := strings.TrimRight(s.config.S3BaseEndpoint, "/")
	return fmt.Sprintf("%s/%s/%s", base, s.config.S3Bucket, key)
}
