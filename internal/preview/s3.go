package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3KeyPrefix = "previews/"

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store stages previews in a bucket and hands the browser short lived
// presigned GET URLs. A bucket lifecycle rule on the previews/ prefix should
// expire anything an abandoned form leaves behind.
type S3Store struct {
	client    s3API
	presigner s3Presigner
	bucket    string
	ttl       time.Duration
}

func NewS3Store(client *s3.Client, bucket string, ttl time.Duration) *S3Store {
	return newS3Store(client, s3.NewPresignClient(client), bucket, ttl)
}

func newS3Store(client s3API, presigner s3Presigner, bucket string, ttl time.Duration) *S3Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &S3Store{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		ttl:       ttl,
	}
}

func s3Key(h Handle) string {
	return s3KeyPrefix + h.ID
}

func (s *S3Store) Acquire(ctx context.Context, name, contentType string, data []byte) (Handle, error) {
	h := newHandle()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s3Key(h)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"filename": url.QueryEscape(name),
		},
	})
	if err != nil {
		return Handle{}, fmt.Errorf("failed to stage preview in s3: %w", err)
	}

	return h, nil
}

func (s *S3Store) Release(ctx context.Context, h Handle) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key(h)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete preview %s from s3: %w", h.ID, err)
	}
	return nil
}

func (s *S3Store) Open(ctx context.Context, h Handle) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key(h)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch preview %s from s3: %w", h.ID, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read preview %s: %w", h.ID, err)
	}

	name, err := url.QueryUnescape(out.Metadata["filename"])
	if err != nil {
		name = out.Metadata["filename"]
	}

	return &Object{
		Name:        name,
		ContentType: aws.ToString(out.ContentType),
		Data:        data,
	}, nil
}

// URL presigns a GET for the staged object, valid for the store TTL.
func (s *S3Store) URL(ctx context.Context, h Handle) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3Key(h)),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign preview %s: %w", h.ID, err)
	}
	return req.URL, nil
}
