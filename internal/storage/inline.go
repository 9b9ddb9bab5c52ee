package storage

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/samber/lo"
)

// Inline は画像を data URL として埋め込みます。外部ストレージを持たない構成の既定です。
type Inline struct{}

func (Inline) Publish(_ context.Context, obj Object) (string, error) {
	if len(obj.Data) == 0 {
		return "", errors.New("empty image data")
	}
	ct := lo.Ternary(obj.ContentType != "", obj.ContentType, "image/png")
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(obj.Data), nil
}
