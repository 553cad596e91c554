package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	appconfig "github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

const healthCheckKey = "health-check-test"

var (
	_ StorageInterface = (*S3Storage)(nil)
	_ Checker          = (*S3Storage)(nil)
	_ Checker          = (*LocalSaver)(nil)
)

type S3Storage struct {
	client        *s3.Client
	bucketName    string
	prefix        string
	presignExpiry time.Duration
}

func (s *S3Storage) BucketName() string {
	return s.bucketName
}

func NewS3Storage(cfg *appconfig.S3Config) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client

	// Check if we're using LocalStack
	if cfg.EndpointURL != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true // Required for LocalStack
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Storage{
		client:        client,
		bucketName:    cfg.BucketName,
		prefix:        cfg.Prefix,
		presignExpiry: cfg.PresignExpiry,
	}, nil
}

// Save uploads body under prefix/<uuid>/name so equal names never collide,
// and reports a presigned GET URL as the location.
func (s *S3Storage) Save(ctx context.Context, name string, body io.Reader, contentType string) (*models.SavedFile, error) {
	name = SanitizeName(name)
	key := path.Join(s.prefix, uuid.New().String(), name)

	size, err := s.Upload(ctx, key, body, contentType, map[string]string{
		"original-name": name,
	})
	if err != nil {
		return nil, err
	}

	location, err := s.GeneratePresignedURL(ctx, key, s.presignExpiry)
	if err != nil {
		utils.LogWarn(ctx, "Presigning saved object failed", utils.Fields{"key": key, "error": err.Error()})
		location = fmt.Sprintf("s3://%s/%s", s.bucketName, key)
	}

	utils.LogInfo(ctx, "Uploaded download to S3", utils.Fields{
		"bucket": s.bucketName,
		"key":    key,
		"size":   size,
	})

	return &models.SavedFile{
		Name:        name,
		Location:    location,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// Upload spools data to a temporary file so PutObject gets a seekable body
// with a known length without holding the whole video in memory.
func (s *S3Storage) Upload(ctx context.Context, key string, data io.Reader, contentType string, metadata map[string]string) (int64, error) {
	tmp, err := os.CreateTemp("", "vidgrab-upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create spool file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, contextReader{ctx: ctx, r: data})
	if err != nil {
		return 0, fmt.Errorf("failed to read data: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind spool file: %w", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          tmp,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		Metadata:      metadata,
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return size, nil
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	_, err := s.client.HeadObject(ctx, input)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

func (s *S3Storage) GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	presignResult, err := presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return presignResult.URL, nil
}

// Check verifies bucket connectivity with a HEAD on a key that normally
// does not exist.
func (s *S3Storage) Check(ctx context.Context) error {
	_, err := s.Exists(ctx, healthCheckKey)
	return err
}

func isNotFoundError(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
