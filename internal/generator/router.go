package generator

import (
	"context"
	"fmt"
	"strings"

	"puter4image-web/internal/domain"
	"puter4image-web/internal/sdk"
	"puter4image-web/internal/storage"
)

// Provider は画像生成バックエンドの種別です。
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ProviderFor はモデル名からバックエンドを決定します。
func ProviderFor(model string) Provider {
	m := strings.ToLower(strings.TrimSpace(model))
	if strings.HasPrefix(m, "dall-e") || strings.HasPrefix(m, "gpt-image") {
		return ProviderOpenAI
	}
	return ProviderGemini
}

// Router はモデル名に応じて呼び出し先を振り分ける Capability です。
type Router struct {
	providers map[Provider]sdk.Capability
}

// NewRouter は nil のバックエンドを未設定として扱う Router を返します。
func NewRouter(gemini, openai sdk.Capability) *Router {
	providers := make(map[Provider]sdk.Capability)
	if gemini != nil {
		providers[ProviderGemini] = gemini
	}
	if openai != nil {
		providers[ProviderOpenAI] = openai
	}
	return &Router{providers: providers}
}

func (r *Router) TextToImage(ctx context.Context, prompt string, opts domain.Options) (*domain.ImageHandle, error) {
	p := ProviderFor(opts.Model)
	c, ok := r.providers[p]
	if !ok {
		return nil, fmt.Errorf("model %q requires the %s provider, which is not configured", opts.Model, p)
	}
	return c.TextToImage(ctx, prompt, opts)
}

// Keys は各バックエンドの API キーです。
type Keys struct {
	Gemini string
	OpenAI string
}

// NewFactory は設定済みのバックエンドだけを束ねた Router を生成する sdk.Factory を返します。
func NewFactory(keys Keys, publisher storage.Publisher) sdk.Factory {
	return func(ctx context.Context) (sdk.Capability, error) {
		var gemini, openai sdk.Capability
		if keys.Gemini != "" {
			g, err := NewGemini(ctx, keys.Gemini, publisher)
			if err != nil {
				return nil, err
			}
			gemini = g
		}
		if keys.OpenAI != "" {
			openai = NewOpenAI(keys.OpenAI, publisher)
		}
		if gemini == nil && openai == nil {
			return nil, fmt.Errorf("no image provider configured")
		}
		return NewRouter(gemini, openai), nil
	}
}
