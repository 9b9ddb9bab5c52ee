package storage

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"mime"
	"time"
)

// Object は公開する画像バイナリです。
type Object struct {
	Data        []byte
	ContentType string
}

// Publisher は生成画像を保存し、ブラウザから参照可能な URL を返します。
type Publisher interface {
	Publish(ctx context.Context, obj Object) (string, error)
}

// ObjectName は生成時刻と内容から一意で安全なファイル名を生成します。
// 例: "20260113_150405_ab12cd34.png"
func ObjectName(obj Object, now time.Time) string {
	h := md5.New()
	h.Write(obj.Data)
	nanoBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nanoBytes, uint64(now.UnixNano()))
	h.Write(nanoBytes)

	hash := fmt.Sprintf("%x", h.Sum(nil))[:8]
	return fmt.Sprintf("%s_%s%s", now.UTC().Format("20060102_150405"), hash, extensionFor(obj.ContentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png", "":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
