package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/devotionalai/api/internal/config"
)

// StorageClient defines the interface for object storage operations
type StorageClient interface {
	UploadFile(ctx context.Context, localPath, key, contentType string) (string, int64, error)
	Delete(ctx context.Context, key string) error
	GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	GetPublicURL(key string) string
}

// R2Client implements StorageClient for Cloudflare R2
type R2Client struct {
	s3Client   *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	publicURL  string
}

// NewR2Client creates a new R2 storage client
func NewR2Client(cfg *config.R2Config) (*R2Client, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("R2 configuration incomplete")
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: endpoint,
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithEndpointResolverWithOptions(r2Resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)

	return &R2Client{
		s3Client:   s3Client,
		presigner:  s3.NewPresignClient(s3Client),
		bucketName: cfg.BucketName,
		publicURL:  cfg.PublicURL,
	}, nil
}

// UploadFile uploads a local file under the given key and returns the public
// URL and the file size. Re-uploading the same key overwrites the object.
func (c *R2Client) UploadFile(ctx context.Context, localPath, key, contentType string) (string, int64, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", 0, &StorageError{Op: "upload", Key: key, Message: "failed to open local artifact", Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", 0, &StorageError{Op: "upload", Key: key, Message: "failed to stat local artifact", Err: err}
	}

	url, err := c.upload(ctx, key, file, contentType)
	if err != nil {
		return "", 0, err
	}
	return url, info.Size(), nil
}

func (c *R2Client) upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:       aws.String(c.bucketName),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000"),
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		return "", &StorageError{Op: "upload", Key: key, Message: "failed to upload to R2", Err: err}
	}

	return c.GetPublicURL(key), nil
}

// Delete removes a file from R2
func (c *R2Client) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	}

	if _, err := c.s3Client.DeleteObject(ctx, input); err != nil {
		return &StorageError{Op: "delete", Key: key, Message: "failed to delete from R2", Err: err}
	}

	return nil
}

// GetSignedURL generates a presigned URL for temporary access
func (c *R2Client) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	}

	presignedReq, err := c.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", &StorageError{Op: "presign", Key: key, Message: "failed to generate presigned URL", Err: err}
	}

	return presignedReq.URL, nil
}

// GetPublicURL returns the public CDN URL for a key
func (c *R2Client) GetPublicURL(key string) string {
	if c.publicURL != "" {
		return fmt.Sprintf("%s/%s", c.publicURL, key)
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s", c.bucketName, key)
}

// ObjectKey groups artifacts as {kind}/{userID}/{generationID}.{ext} so every
// key is unique per artifact and resolvable through GetPublicURL.
func ObjectKey(kind, userID, generationID, ext string) string {
	return fmt.Sprintf("%s/%s/%s.%s", kind, userID, generationID, ext)
}
