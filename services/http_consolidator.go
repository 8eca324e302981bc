package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"couple_kitchen/config"
	"couple_kitchen/logger"
	"couple_kitchen/models"
	"couple_kitchen/utils"

	"github.com/go-resty/resty/v2"
)

// maxResponseBytes 合并服务响应体的上限
const maxResponseBytes = 1 << 20

var errResponseTooLarge = errors.New("合并服务响应体过大")

// readLimited 最多读取 maxResponseBytes，超出时返回错误
func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: 超过 %d 字节", errResponseTooLarge, maxResponseBytes)
	}
	return body, nil
}

// HTTPConsolidator 调用独立部署的食材合并服务：POST {recipes} 返回合并结果
type HTTPConsolidator struct {
	client *resty.Client
	url    string
}

// NewHTTPConsolidator 创建外部合并服务客户端
func NewHTTPConsolidator(cfg *config.Config) *HTTPConsolidator {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Consolidation.TimeoutSec) * time.Second).
		SetHeader("Content-Type", "application/json")
	return &HTTPConsolidator{client: client, url: cfg.Consolidation.URL}
}

// Consolidate 返回响应体原文，由调用方负责提取JSON
func (h *HTTPConsolidator) Consolidate(ctx context.Context, req models.ConsolidationRequest) (string, error) {
	logger.Info("调用外部合并服务", "url", h.url, "recipes", len(req.Recipes))

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(req).
		SetDoNotParseResponse(true).
		Post(h.url)
	if err != nil {
		return "", fmt.Errorf("请求合并服务失败: %w", err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	body, err := readLimited(raw)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("合并服务返回错误状态: %d - %s", resp.StatusCode(), utils.Preview(string(body), 200))
	}
	return string(body), nil
}

// NewConsolidationClient 按配置选择合并服务实现
func NewConsolidationClient(ctx context.Context, cfg *config.Config) (ConsolidationClient, error) {
	switch cfg.Consolidation.Provider {
	case "siliconflow":
		return NewSiliconFlowConsolidator(cfg), nil
	case "gemini":
		g, err := NewGeminiConsolidator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "http":
		if cfg.Consolidation.URL == "" {
			return nil, fmt.Errorf("consolidation.url 未配置")
		}
		return NewHTTPConsolidator(cfg), nil
	default:
		return nil, fmt.Errorf("不支持的合并服务: %s", cfg.Consolidation.Provider)
	}
}
