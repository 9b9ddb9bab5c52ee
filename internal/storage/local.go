package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// ValidName は公開ファイル名として許可される形式です。
var ValidName = regexp.MustCompile(`^[a-zA-Z0-9_-]+\.[a-z]+$`)

// Local は画像をローカルディレクトリに書き出し、このサービス自身の /images/ 経由で配信します。
type Local struct {
	Dir     string
	BaseURL string
	Now     func() time.Time
}

func (l *Local) Publish(ctx context.Context, obj Object) (string, error) {
	if len(obj.Data) == 0 {
		return "", errors.New("empty image data")
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image dir: %w", err)
	}

	name := ObjectName(obj, l.now())
	if err := os.WriteFile(filepath.Join(l.Dir, name), obj.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	slog.InfoContext(ctx, "Image written to local store", "name", name, "bytes", len(obj.Data))

	u, err := url.JoinPath(l.BaseURL, "images", name)
	if err != nil {
		return "", fmt.Errorf("failed to build image URL: %w", err)
	}
	return u, nil
}

// Path は公開ファイル名に対応するローカルパスを返します。
func (l *Local) Path(name string) (string, error) {
	if !ValidName.MatchString(name) {
		return "", fmt.Errorf("invalid image name: %s", name)
	}
	return filepath.Join(l.Dir, name), nil
}

func (l *Local) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
