package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/Clark-Hu/artboard/internal/domain"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Options configures an S3-compatible bucket.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// S3Store keeps uploads as objects in a single bucket.
type S3Store struct {
	api    S3API
	bucket string
	prefix string
	ids    IDSource
	logger *zap.Logger
}

// NewS3 builds an S3 client from opts and checks that the bucket exists.
func NewS3(ctx context.Context, opts S3Options, ids IDSource, logger *zap.Logger) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket can't be empty")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(opts.Bucket)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return nil, fmt.Errorf("bucket '%s' does not exist", opts.Bucket)
		}
		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return NewS3WithClient(client, opts.Bucket, opts.Prefix, ids, logger), nil
}

// NewS3WithClient wraps an existing client without contacting the bucket.
func NewS3WithClient(api S3API, bucket, prefix string, ids IDSource, logger *zap.Logger) *S3Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Store{
		api:    api,
		bucket: bucket,
		prefix: strings.TrimLeft(prefix, "/"),
		ids:    ids,
		logger: logger,
	}
}

func (s *S3Store) key(name string) string {
	return s.prefix + name
}

// Save uploads the payload. Existing objects are never overwritten: the put
// is conditional and a taken name is retried with the next timestamp.
func (s *S3Store) Save(ctx context.Context, upload Upload) (domain.MediaFile, error) {
	ext := Extension(upload.Filename)
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if attempt > 0 {
			seeker, ok := upload.Body.(io.Seeker)
			if !ok {
				return domain.MediaFile{}, errors.New("put object: name taken and body cannot be replayed")
			}
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return domain.MediaFile{}, fmt.Errorf("rewind upload body: %w", err)
			}
		}
		name := storedName(s.ids.Next(), ext)
		input := &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.key(name)),
			Body:        upload.Body,
			ContentType: aws.String(contentType),
			IfNoneMatch: aws.String("*"),
		}
		if upload.Size > 0 {
			input.ContentLength = aws.Int64(upload.Size)
		}

		_, err := s.api.PutObject(ctx, input)
		if err == nil {
			s.logger.Debug("object stored",
				zap.String("bucket", s.bucket),
				zap.String("key", s.key(name)),
				zap.String("original", upload.Filename))
			return mediaFile(name, upload.ContentType), nil
		}
		if !isPreconditionFailed(err) {
			return domain.MediaFile{}, fmt.Errorf("put object %s: %w", s.key(name), err)
		}
		s.logger.Debug("object key taken, retrying", zap.String("key", s.key(name)))
	}
	return domain.MediaFile{}, fmt.Errorf("put object: no free name after %d attempts", maxNameAttempts)
}

// Open streams an object back. The returned Body is not seekable.
func (s *S3Store) Open(ctx context.Context, name string) (*Object, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", s.key(name), err)
	}

	obj := &Object{
		Name:        name,
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		ModTime:     aws.ToTime(out.LastModified),
	}
	if obj.ContentType == "" {
		obj.ContentType = mime.TypeByExtension(path.Ext(name))
	}
	if obj.ModTime.IsZero() {
		obj.ModTime = time.Now()
	}
	return obj, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed"
}
