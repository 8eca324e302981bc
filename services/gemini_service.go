package services

import (
	"context"
	"fmt"
	"strings"

	"couple_kitchen/config"
	"couple_kitchen/logger"
	"couple_kitchen/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiConsolidator 通过Gemini完成食材合并
type GeminiConsolidator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGeminiConsolidator 创建Gemini合并客户端
func NewGeminiConsolidator(ctx context.Context, cfg *config.Config) (*GeminiConsolidator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(resolveAPIKey(cfg.Gemini.APIKey)))
	if err != nil {
		return nil, fmt.Errorf("创建Gemini客户端失败: %w", err)
	}
	model := client.GenerativeModel(cfg.Gemini.Model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	return &GeminiConsolidator{client: client, model: model, name: cfg.Gemini.Model}, nil
}

// Consolidate 调用Gemini生成合并结果，拼接所有文本片段返回
func (g *GeminiConsolidator) Consolidate(ctx context.Context, req models.ConsolidationRequest) (string, error) {
	logger.Info("调用Gemini合并食材", "model", g.name, "recipes", len(req.Recipes))

	resp, err := g.model.GenerateContent(ctx, genai.Text(buildConsolidationPrompt(req)))
	if err != nil {
		return "", fmt.Errorf("Gemini生成内容失败: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("Gemini响应中没有内容")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("Gemini响应不是文本")
	}
	return sb.String(), nil
}

// Close 关闭底层Gemini客户端
func (g *GeminiConsolidator) Close() error {
	return g.client.Close()
}
