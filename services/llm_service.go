package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"couple_kitchen/config"
	"couple_kitchen/logger"
	"couple_kitchen/models"
	"couple_kitchen/utils"
)

// 定义SiliconFlow API请求和响应结构
type siliconFlowRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type siliconFlowResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// SiliconFlowConsolidator 通过SiliconFlow大模型完成食材合并
type SiliconFlowConsolidator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewSiliconFlowConsolidator 创建SiliconFlow合并客户端
func NewSiliconFlowConsolidator(cfg *config.Config) *SiliconFlowConsolidator {
	return &SiliconFlowConsolidator{
		apiKey:     resolveAPIKey(cfg.SiliconFlow.APIKey),
		model:      cfg.SiliconFlow.Model,
		baseURL:    strings.TrimRight(cfg.SiliconFlow.BaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.Consolidation.TimeoutSec) * time.Second},
	}
}

// resolveAPIKey 如果配置中的API Key是环境变量引用(${NAME})，则从环境变量中获取
func resolveAPIKey(apiKey string) string {
	if strings.HasPrefix(apiKey, "${") && strings.HasSuffix(apiKey, "}") {
		envName := apiKey[2 : len(apiKey)-1]
		logger.Info("从环境变量获取API Key", "env_var", envName)
		return os.Getenv(envName)
	}
	return apiKey
}

// Consolidate 调用chat completions接口，返回模型生成的原始文本
func (c *SiliconFlowConsolidator) Consolidate(ctx context.Context, req models.ConsolidationRequest) (string, error) {
	prompt := buildConsolidationPrompt(req)
	logger.Info("调用SiliconFlow合并食材", "model", c.model, "recipes", len(req.Recipes))
	logger.Debug("LLM请求提示词预览", "prompt_preview", utils.Preview(prompt, 100))

	reqJSON, err := json.Marshal(siliconFlowRequest{
		Model: c.model,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(reqJSON))
	if err != nil {
		return "", fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("发送请求失败", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return "", fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body)
	if err != nil {
		return "", err
	}

	logger.Info("LLM响应状态", "status_code", resp.StatusCode, "response_size", len(body),
		"duration_ms", time.Since(startTime).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		logger.Error("API请求失败", "status", resp.StatusCode, "response", utils.Preview(string(body), 500))
		return "", fmt.Errorf("API请求失败: %d - %s", resp.StatusCode, utils.Preview(string(body), 200))
	}

	var sfResp siliconFlowResponse
	if err := json.Unmarshal(body, &sfResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if len(sfResp.Choices) == 0 {
		return "", fmt.Errorf("API响应中没有内容")
	}

	logger.Info("成功获取LLM响应",
		"tokens_prompt", sfResp.Usage.PromptTokens,
		"tokens_completion", sfResp.Usage.CompletionTokens,
		"tokens_total", sfResp.Usage.TotalTokens,
		"finish_reason", sfResp.Choices[0].FinishReason)

	return sfResp.Choices[0].Message.Content, nil
}
