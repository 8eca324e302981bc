package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"couple_kitchen/logger"
	"couple_kitchen/models"
	"couple_kitchen/utils"
)

// APIError 服务端返回的非 0 响应码
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("接口返回错误 %d: %s", e.Code, e.Message)
}

// Client 购物清单接口客户端
type Client struct {
	http   *resty.Client
	apiKey string
	now    func() time.Time
}

// New 创建客户端，apiKey 非空时为每个请求签名
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	c := &Client{apiKey: apiKey, now: time.Now}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if c.apiKey == "" {
				return nil
			}
			timestamp, auth := utils.SignRequest(c.apiKey, c.now())
			req.SetHeader("timestamp", timestamp)
			req.SetHeader("Authorization", auth)
			return nil
		})
	return c
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call 发送请求并解开响应外层，out 为 nil 时忽略 data
func (c *Client) call(req *resty.Request, method, path string, out interface{}) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("请求 %s %s 失败: %w", method, path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("请求 %s %s 返回状态码 %d", method, path, resp.StatusCode())
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	if env.Code != models.CodeSuccess {
		logger.Warn("接口返回错误", "method", method, "path", path, "code", env.Code, "message", env.Message)
		return &APIError{Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("解析响应数据失败: %w", err)
	}
	return nil
}

// List 获取某天的购物项
func (c *Client) List(ctx context.Context, coupleID, date string) ([]models.ShoppingItem, error) {
	items := make([]models.ShoppingItem, 0)
	req := c.http.R().SetContext(ctx).SetQueryParams(map[string]string{
		"coupleId": coupleID,
		"date":     date,
	})
	if err := c.call(req, resty.MethodGet, "/shopping", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateMany 批量追加购物项
func (c *Client) CreateMany(ctx context.Context, coupleID, date string, items []models.NewShoppingItem) (int, error) {
	var out models.CreateItemsResponse
	req := c.http.R().SetContext(ctx).SetBody(models.CreateItemsRequest{
		CoupleID: coupleID,
		Date:     date,
		Items:    items,
	})
	if err := c.call(req, resty.MethodPost, "/shopping", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// PatchChecked 更新勾选状态
func (c *Client) PatchChecked(ctx context.Context, id string, checked bool) (*models.ShoppingItem, error) {
	var out models.ShoppingItem
	req := c.http.R().SetContext(ctx).
		SetPathParam("id", id).
		SetBody(models.PatchCheckedRequest{Checked: &checked})
	if err := c.call(req, resty.MethodPatch, "/shopping/{id}", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete 删除购物项
func (c *Client) Delete(ctx context.Context, id string) error {
	req := c.http.R().SetContext(ctx).SetPathParam("id", id)
	return c.call(req, resty.MethodDelete, "/shopping/{id}", nil)
}

// Consolidate 合并菜谱食材并重新生成当天清单
func (c *Client) Consolidate(ctx context.Context, coupleID, date string, recipes []models.RecipeInput) (*models.ConsolidateResponse, error) {
	var out models.ConsolidateResponse
	req := c.http.R().SetContext(ctx).SetBody(models.ConsolidateRequest{
		CoupleID: coupleID,
		Date:     date,
		Recipes:  recipes,
	})
	if err := c.call(req, resty.MethodPost, "/shopping/consolidate", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScopedStore 绑定到 (coupleId, date) 的购物清单存储
type ScopedStore struct {
	client   *Client
	coupleID string
	date     string
}

// Scope 返回某天的购物清单存储
func (c *Client) Scope(coupleID, date string) *ScopedStore {
	return &ScopedStore{client: c, coupleID: coupleID, date: date}
}

func (s *ScopedStore) CoupleID() string { return s.coupleID }

func (s *ScopedStore) Date() string { return s.date }

func (s *ScopedStore) List(ctx context.Context) ([]models.ShoppingItem, error) {
	return s.client.List(ctx, s.coupleID, s.date)
}

func (s *ScopedStore) CreateMany(ctx context.Context, items []models.NewShoppingItem) (int, error) {
	return s.client.CreateMany(ctx, s.coupleID, s.date, items)
}

func (s *ScopedStore) PatchChecked(ctx context.Context, id string, checked bool) (*models.ShoppingItem, error) {
	return s.client.PatchChecked(ctx, id, checked)
}

func (s *ScopedStore) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, id)
}

func (s *ScopedStore) Consolidate(ctx context.Context, recipes []models.RecipeInput) (*models.ConsolidateResponse, error) {
	return s.client.Consolidate(ctx, s.coupleID, s.date, recipes)
}
