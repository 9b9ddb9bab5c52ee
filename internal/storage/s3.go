package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3PutObjectAPI は s3.Client の PutObject です。
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 は画像を S3 にアップロードし、公開ベース URL (CloudFront 等) 配下の URL を返します。
type S3 struct {
	Client        S3PutObjectAPI
	Bucket        string
	Prefix        string
	PublicBaseURL string
	Now           func() time.Time
}

func (u *S3) Publish(ctx context.Context, obj Object) (string, error) {
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	key := path.Join(u.Prefix, ObjectName(obj, now()))

	slog.InfoContext(ctx, "Uploading image to s3", "bucket", u.Bucket, "key", key, "content_type", obj.ContentType)
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.Bucket),
		Key:          aws.String(key),
		ContentType:  aws.String(obj.ContentType),
		Body:         bytes.NewReader(obj.Data),
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to s3: %w", err)
	}

	return url.JoinPath(u.PublicBaseURL, key)
}
