package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"puter4image-web/internal/domain"
	"puter4image-web/internal/storage"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"google.golang.org/genai"
)

// Gemini は Gemini の画像生成モデルを使う Capability です。
type Gemini struct {
	client    *genai.Client
	publisher storage.Publisher
}

// NewGemini は gemini クライアントを初期化します。
func NewGemini(ctx context.Context, apiKey string, publisher storage.Publisher) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: apiKey is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &Gemini{client: client, publisher: publisher}, nil
}

// TextToImage はプロンプトから画像を生成し、公開先の URL を持つハンドルを返します。
func (g *Gemini) TextToImage(ctx context.Context, prompt string, opts domain.Options) (*domain.ImageHandle, error) {
	slog.InfoContext(ctx, "Generating image via Gemini", "model", opts.Model, "prompt_len", len(prompt))

	res, err := g.client.Models.GenerateContent(
		ctx,
		opts.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	)
	if err != nil {
		return nil, err
	}

	img, err := extractImage(res)
	if err != nil {
		return nil, err
	}

	src, err := g.publisher.Publish(ctx, storage.Object{Data: img.Data, ContentType: img.MimeType})
	if err != nil {
		return nil, fmt.Errorf("failed to publish generated image: %w", err)
	}

	return &domain.ImageHandle{Src: src, MimeType: img.MimeType, Model: opts.Model}, nil
}

// extractImage はレスポンスの最初の画像パートを取り出します。
// 画像が無い場合、モデルが返したテキストをエラーに含めます。
func extractImage(res *genai.GenerateContentResponse) (*imagedom.ImageResponse, error) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0] == nil || res.Candidates[0].Content == nil {
		return nil, errors.New("no candidates returned from model")
	}

	var texts []string
	for _, part := range res.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &imagedom.ImageResponse{Data: part.InlineData.Data, MimeType: mimeType}, nil
		}
		if t := strings.TrimSpace(part.Text); t != "" {
			texts = append(texts, t)
		}
	}

	if len(texts) > 0 {
		return nil, fmt.Errorf("no image data returned from model: %s", strings.Join(texts, " "))
	}
	return nil, errors.New("no image data returned from model")
}
