package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ObjectWriter は remoteio.OutputWriter の書き込み部分です。
type ObjectWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// URLSigner は remoteio.URLSigner の署名付き URL 生成部分です。
type URLSigner interface {
	GenerateSignedURL(ctx context.Context, path, method string, expiry time.Duration) (string, error)
}

// GCS は画像を GCS に保存し、一時的な署名付き URL を返します。
type GCS struct {
	Writer ObjectWriter
	Signer URLSigner
	// ObjectURL はファイル名から "gs://bucket/..." を組み立てます。
	ObjectURL func(name string) string
	Expiry    time.Duration
	Now       func() time.Time
}

func (g *GCS) Publish(ctx context.Context, obj Object) (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	gcsPath := g.ObjectURL(ObjectName(obj, now()))

	if err := g.Writer.Write(ctx, gcsPath, bytes.NewReader(obj.Data), obj.ContentType); err != nil {
		return "", fmt.Errorf("failed to write image to GCS: %w", err)
	}

	signed, err := g.Signer.GenerateSignedURL(ctx, gcsPath, http.MethodGet, g.Expiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign image URL: %w", err)
	}
	return signed, nil
}
