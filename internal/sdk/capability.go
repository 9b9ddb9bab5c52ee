// Package sdk は外部の画像生成 SDK を「明示的に注入される依存」として扱うための型を提供します。
package sdk

import (
	"context"
	"errors"

	"puter4image-web/internal/domain"
)

// ErrNilCapability はローダーがエラー無しで nil を返した場合のエラーです。
var ErrNilCapability = errors.New("sdk: loader returned no capability")

// Capability は SDK が公開する非同期の text-to-image 機能です。
// 呼び出しは一度だけ成功または失敗で確定します。
type Capability interface {
	TextToImage(ctx context.Context, prompt string, opts domain.Options) (*domain.ImageHandle, error)
}

// Environment は実行環境にケイパビリティが既に存在するかを参照します。
type Environment interface {
	Lookup() (Capability, bool)
}

// Loader はケイパビリティを読み込みます (ブラウザでのスクリプト読み込みに相当)。
type Loader interface {
	Load(ctx context.Context) (Capability, error)
}

// Factory はケイパビリティを初期化する関数です。
type Factory func(ctx context.Context) (Capability, error)
