package builder

import (
	"context"
	"fmt"
	"strings"

	"puter4image-web/internal/app"
	"puter4image-web/internal/config"
	"puter4image-web/internal/storage"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// buildStorage は IMAGE_STORE に応じた画像の公開先を初期化します。
func buildStorage(ctx context.Context, cfg *config.Config) (*app.Storage, error) {
	switch cfg.ImageStore {
	case config.StoreLocal:
		local := &storage.Local{Dir: cfg.LocalImageDir, BaseURL: cfg.ServiceURL}
		return &app.Storage{Publisher: local, Local: local}, nil

	case config.StoreGCS:
		return buildGCSStorage(ctx, cfg)

	case config.StoreS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return &app.Storage{Publisher: &storage.S3{
			Client:        s3.NewFromConfig(awsCfg),
			Bucket:        cfg.S3Bucket,
			Prefix:        strings.Trim(cfg.BaseOutputDir, "/") + "/images",
			PublicBaseURL: cfg.S3PublicBaseURL,
		}}, nil

	default:
		return &app.Storage{Publisher: storage.Inline{}}, nil
	}
}

// buildGCSStorage は、GCS ベースの I/O コンポーネントを初期化します。
func buildGCSStorage(ctx context.Context, cfg *config.Config) (*app.Storage, error) {
	factory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS factory: %w", err)
	}
	w, err := factory.OutputWriter()
	if err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to create output writer: %w", err)
	}
	s, err := factory.URLSigner()
	if err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to create URL signer: %w", err)
	}

	return &app.Storage{
		Publisher: &storage.GCS{
			Writer: w,
			Signer: s,
			ObjectURL: func(name string) string {
				return cfg.GetGCSObjectURL(cfg.GetObjectPath(name))
			},
			Expiry: cfg.SignedURLExpiration,
		},
		IOFactory: factory,
	}, nil
}
