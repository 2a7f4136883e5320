package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/akosarev/metaserve/internal/metatile"
	"github.com/akosarev/metaserve/pkg/logger"
	"github.com/akosarev/metaserve/pkg/metrics"
)

// s3API is the slice of the S3 client the fetcher uses.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Storage struct {
	client        s3API
	bucket        string
	requesterPays bool
	logger        logger.Logger
}

type S3Config struct {
	Bucket        string
	RequesterPays bool
}

func NewS3Storage(client s3API, cfg S3Config, l logger.Logger) *S3Storage {
	return &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		requesterPays: cfg.RequesterPays,
		logger:        l,
	}
}

var _ Fetcher = (*S3Storage)(nil)

func (s *S3Storage) Fetch(ctx context.Context, key string, info metatile.CacheInfo) (*metatile.StorageResponse, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if !info.LastModified.IsZero() {
		input.IfModifiedSince = aws.Time(info.LastModified)
	}
	if info.ETag != "" {
		input.IfNoneMatch = aws.String(info.ETag)
	}
	if s.requesterPays {
		input.RequestPayer = types.RequestPayerRequester
	}

	start := time.Now()
	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		metrics.S3FetchErrors.Inc()
		return nil, s.mapError(key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.S3FetchErrors.Inc()
		return nil, &FetchError{Bucket: s.bucket, Key: key, Code: "BodyReadError", Err: err}
	}
	duration := time.Since(start)
	metrics.S3FetchDuration.Observe(duration.Seconds())

	resp := &metatile.StorageResponse{
		Data: data,
		CacheInfo: metatile.CacheInfo{
			ETag: strings.Trim(aws.ToString(out.ETag), `"`),
		},
	}
	if out.LastModified != nil {
		resp.CacheInfo.LastModified = *out.LastModified
	}

	s.logger.Info("fetched metatile from s3",
		"key", key,
		"duration", duration,
		"size", len(data),
	)

	return resp, nil
}

func (s *S3Storage) mapError(key string, err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return &NotFoundError{Bucket: s.bucket, Key: key}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotModified {
		return ErrNotModified
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotModified", "304":
			return ErrNotModified
		case "NoSuchKey":
			return &NotFoundError{Bucket: s.bucket, Key: key}
		default:
			return &FetchError{Bucket: s.bucket, Key: key, Code: apiErr.ErrorCode(), Err: err}
		}
	}

	return &FetchError{Bucket: s.bucket, Key: key, Code: "Unknown", Err: err}
}
