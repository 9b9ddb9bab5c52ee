package config

import (
	"os"
	"path"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultImageModel はモデル欄が空のときに使用する画像生成モデルです。
	DefaultImageModel = "gemini-3-pro-image-preview"
	// SignedURLExpiration 生成画像をプレビューで確認する時間を考慮した有効期限
	SignedURLExpiration = 15 * time.Minute
	// DefaultHTTPTimeout 画像生成 API の応答を考慮したタイムアウト
	DefaultHTTPTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultSessionIdle     = 30 * time.Minute
	DefaultLocalImageDir   = "output/images"
)

// ImageStore は生成画像の公開先の種別です。
type ImageStore string

const (
	StoreInline ImageStore = "inline"
	StoreLocal  ImageStore = "local"
	StoreGCS    ImageStore = "gcs"
	StoreS3     ImageStore = "s3"
)

// Config は環境変数から読み込まれたアプリケーションの全設定を保持します。
type Config struct {
	ServiceURL      string
	Port            string
	TemplateDir     string // HTMLテンプレートの格納ディレクトリ
	ShutdownTimeout time.Duration
	LogDropTime     bool

	// Image generation
	DefaultModel string
	GeminiAPIKey string
	OpenAIAPIKey string

	// Image publishing
	ImageStore          ImageStore
	LocalImageDir       string
	GCSBucket           string
	BaseOutputDir       string // GCS/S3 内のベースルート (例: "output")
	S3Bucket            string
	S3PublicBaseURL     string
	SignedURLExpiration time.Duration

	// Side channels
	SlackWebhookURL string
	DatabaseURL     string

	// Session
	SessionSecret      string
	SessionIdleTimeout time.Duration
}

// LoadConfig は .env と環境変数から設定を読み込み、Config 構造体を生成します。
func LoadConfig() *Config {
	// .env が無い環境 (Cloud Run 等) では環境変数のみを使います。
	_ = godotenv.Load()

	// 実行環境（Cloud Run, ko）に応じたパスの解決
	baseDir := "."
	if os.Getenv("KO_DATA_PATH") != "" || os.Getenv("K_SERVICE") != "" {
		baseDir = "/app"
	}

	return &Config{
		ServiceURL:      getEnv("SERVICE_URL", "http://localhost:8080"),
		Port:            getEnv("PORT", "8080"),
		TemplateDir:     getEnv("TEMPLATE_DIR", path.Join(baseDir, "templates")),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		LogDropTime:     getBoolEnv("LOG_DROP_TIME", false),

		DefaultModel: getEnv("DEFAULT_IMAGE_MODEL", DefaultImageModel),
		GeminiAPIKey: firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		ImageStore:          ImageStore(getEnv("IMAGE_STORE", string(StoreInline))),
		LocalImageDir:       getEnv("LOCAL_IMAGE_DIR", DefaultLocalImageDir),
		GCSBucket:           getEnv("GCS_IMAGE_BUCKET", ""),
		BaseOutputDir:       getEnv("BASE_OUTPUT_DIR", "output"),
		S3Bucket:            getEnv("S3_IMAGE_BUCKET", ""),
		S3PublicBaseURL:     getEnv("S3_PUBLIC_BASE_URL", ""),
		SignedURLExpiration: SignedURLExpiration,

		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),

		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionIdleTimeout: getDurationEnv("SESSION_IDLE_TIMEOUT", DefaultSessionIdle),
	}
}
