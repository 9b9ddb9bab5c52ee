package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"puter4image-web/internal/domain"
	"puter4image-web/internal/storage"

	"github.com/sashabaranov/go-openai"
)

// OpenAIImageAPI は openai.Client の画像生成部分です。
type OpenAIImageAPI interface {
	CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error)
}

// OpenAI は DALL·E / gpt-image 系モデルを使う Capability です。
type OpenAI struct {
	client    OpenAIImageAPI
	publisher storage.Publisher
}

func NewOpenAI(apiKey string, publisher storage.Publisher) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey), publisher: publisher}
}

func (o *OpenAI) TextToImage(ctx context.Context, prompt string, opts domain.Options) (*domain.ImageHandle, error) {
	slog.InfoContext(ctx, "Generating image via OpenAI", "model", opts.Model, "prompt_len", len(prompt))

	req := openai.ImageRequest{
		Prompt: prompt,
		Model:  opts.Model,
		N:      1,
		Size:   openai.CreateImageSize1024x1024,
	}
	// gpt-image 系は response_format を受け付けず常に base64 を返す
	if strings.HasPrefix(opts.Model, "dall-e") {
		req.ResponseFormat = openai.CreateImageResponseFormatURL
	}

	resp, err := o.client.CreateImage(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no image data returned from model")
	}

	d := resp.Data[0]
	if d.URL != "" {
		return &domain.ImageHandle{Src: d.URL, MimeType: "image/png", Model: opts.Model}, nil
	}
	if d.B64JSON == "" {
		return nil, errors.New("no image data returned from model")
	}

	data, err := base64.StdEncoding.DecodeString(d.B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	src, err := o.publisher.Publish(ctx, storage.Object{Data: data, ContentType: "image/png"})
	if err != nil {
		return nil, fmt.Errorf("failed to publish generated image: %w", err)
	}
	return &domain.ImageHandle{Src: src, MimeType: "image/png", Model: opts.Model}, nil
}
