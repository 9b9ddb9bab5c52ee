package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shouni/netarmor/securenet"
)

// GetObjectPath は生成画像のオブジェクトパスを返します。
// 例: "output/images/20260113_150405_abcd1234.png"
func (c Config) GetObjectPath(name string) string {
	return path.Join(c.BaseOutputDir, "images", name)
}

// GetGCSObjectURL は、指定されたパスから完全なGCSオブジェクトURL ("gs://...") を組み立てます。
// pathが既に "gs://" プレフィックスを持つ場合は、そのままpathを返します。
func (c Config) GetGCSObjectURL(path string) string {
	if strings.HasPrefix(path, "gs://") {
		return path
	}
	if c.GCSBucket != "" {
		return fmt.Sprintf("gs://%s/%s", c.GCSBucket, path)
	}

	return path
}

// --- バリデーション ---

// ValidateEssentialConfig はアプリケーション実行に不可欠な設定を検証します。
func ValidateEssentialConfig(cfg *Config) error {
	if !IsSecureURL(cfg.ServiceURL) {
		return fmt.Errorf("security error: SERVICE_URL ('%s') must be HTTPS in production", cfg.ServiceURL)
	}

	if cfg.SessionSecret == "" {
		return fmt.Errorf("configuration error: SESSION_SECRET is not set")
	}

	return ValidateGeneratorConfig(cfg)
}

// ValidateGeneratorConfig は画像生成と公開に必要な設定を検証します。CLI からも利用されます。
func ValidateGeneratorConfig(cfg *Config) error {
	if cfg.GeminiAPIKey == "" && cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("configuration error: GEMINI_API_KEY or OPENAI_API_KEY must be set")
	}

	switch cfg.ImageStore {
	case StoreInline:
	case StoreLocal:
		if cfg.LocalImageDir == "" {
			return fmt.Errorf("configuration error: LOCAL_IMAGE_DIR is required for the local store")
		}
	case StoreGCS:
		if cfg.GCSBucket == "" {
			return fmt.Errorf("configuration error: GCS_IMAGE_BUCKET is required for the gcs store")
		}
	case StoreS3:
		if cfg.S3Bucket == "" || cfg.S3PublicBaseURL == "" {
			return fmt.Errorf("configuration error: S3_IMAGE_BUCKET and S3_PUBLIC_BASE_URL are required for the s3 store")
		}
	default:
		return fmt.Errorf("configuration error: unknown IMAGE_STORE %q", cfg.ImageStore)
	}

	return nil
}

// IsSecureURL は指定された URL が HTTPS または localhost であるか判定します。
func IsSecureURL(rawURL string) bool {
	return securenet.IsSecureServiceURL(rawURL)
}

// --- 環境変数ヘルパー ---

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func getBoolEnv(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", raw)
		return fallback
	}
	return b
}

func firstNonEmpty(values ...string) string {
	v, _ := lo.Find(values, func(s string) bool { return strings.TrimSpace(s) != "" })
	return strings.TrimSpace(v)
}
