package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"couple_kitchen/logger"
	"couple_kitchen/models"
	"couple_kitchen/utils"
)

var (
	// ErrMissingParams coupleId 或 date 缺失
	ErrMissingParams = errors.New("缺少必要参数")
	// ErrInvalidParams 参数格式或取值错误
	ErrInvalidParams = errors.New("无效的参数")
)

// ShoppingService 购物清单服务：参数校验和规范化后交给存储层
type ShoppingService struct {
	repo ShoppingRepository
}

// NewShoppingService 创建购物清单服务
func NewShoppingService(repo ShoppingRepository) *ShoppingService {
	return &ShoppingService{repo: repo}
}

// ParseScope 校验并解析 (coupleId, date)
func ParseScope(coupleID, date string) (string, time.Time, error) {
	coupleID = strings.TrimSpace(coupleID)
	if coupleID == "" || strings.TrimSpace(date) == "" {
		return "", time.Time{}, ErrMissingParams
	}
	d, err := models.ParseListDate(date)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return coupleID, d, nil
}

// List 返回某天的购物项
func (s *ShoppingService) List(ctx context.Context, coupleID, date string) ([]models.ShoppingItem, error) {
	cid, d, err := ParseScope(coupleID, date)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, cid, d)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ShoppingItem{}
	}
	return items, nil
}

// CreateMany 校验并追加购物项，未给出有效分类的项按名称自动分类
func (s *ShoppingService) CreateMany(ctx context.Context, coupleID, date string, items []models.NewShoppingItem) (int, error) {
	cid, d, err := ParseScope(coupleID, date)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	normalized := make([]models.NewShoppingItem, 0, len(items))
	for i, it := range items {
		it = NormalizeNewItem(it)
		if err := it.Validate(); err != nil {
			return 0, fmt.Errorf("%w: items[%d] %v", ErrInvalidParams, i, err)
		}
		normalized = append(normalized, it)
	}

	count, err := s.repo.CreateMany(ctx, cid, d, normalized)
	if err != nil {
		return 0, err
	}
	logger.Info("新增购物项", "couple_id", cid, "date", date, "count", count)
	return count, nil
}

// NormalizeNewItem 规范化名称、数量和分类
func NormalizeNewItem(it models.NewShoppingItem) models.NewShoppingItem {
	it.Name = utils.NormalizeItemName(it.Name)
	it.Amount = strings.TrimSpace(it.Amount)
	it.Category = ResolveCategory(string(it.Category), it.Name)
	it.RecipeID = strings.TrimSpace(it.RecipeID)
	it.RecipeName = strings.TrimSpace(it.RecipeName)
	if it.Type == "" {
		it.Type = models.ItemTypeMemo
	}
	return it
}

// PatchChecked 更新勾选状态，购物项不存在时返回 sql.ErrNoRows
func (s *ShoppingService) PatchChecked(ctx context.Context, id string, checked bool) (*models.ShoppingItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingParams
	}
	return s.repo.PatchChecked(ctx, id, checked)
}

// Delete 删除购物项，购物项不存在时返回 sql.ErrNoRows
func (s *ShoppingService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingParams
	}
	return s.repo.Delete(ctx, id)
}
