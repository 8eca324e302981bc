package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"couple_kitchen/logger"
	"couple_kitchen/models"
	"couple_kitchen/utils"
)

var (
	// ErrNoRecipes 没有提交任何菜谱
	ErrNoRecipes = errors.New("没有可合并的菜谱")
	// ErrInvalidConsolidation 合并服务返回的结构不符合约定
	ErrInvalidConsolidation = errors.New("合并服务返回结果无效")
	// ErrPartialRegeneration 已删除旧项但新项写入失败，需要重新合并
	ErrPartialRegeneration = errors.New("清单未完整生成")
	// ErrConsolidationUnavailable 合并服务调用失败（网络、超时或对方报错）
	ErrConsolidationUnavailable = errors.New("调用合并服务失败")
)

// ConsolidationService 食材合并引擎：调用外部合并服务，校验结果，按两阶段写入清单
type ConsolidationService struct {
	client ConsolidationClient
	repo   ShoppingRepository
}

// NewConsolidationService 创建合并引擎
func NewConsolidationService(client ConsolidationClient, repo ShoppingRepository) *ConsolidationService {
	return &ConsolidationService{client: client, repo: repo}
}

// RegenerateResult 重新生成清单的结果
type RegenerateResult struct {
	Result  *models.ConsolidationResult
	Deleted int64
	Created int
}

// rawItem/rawRecipe/rawResult 用指针区分字段缺失和空值
type rawItem struct {
	Name     *string `json:"name"`
	Amount   *string `json:"amount"`
	Category *string `json:"category"`
}

type rawRecipe struct {
	RecipeID   *string    `json:"recipeId"`
	RecipeName *string    `json:"recipeName"`
	Items      *[]rawItem `json:"items"`
}

type rawResult struct {
	Common  *[]rawItem   `json:"common"`
	Recipes *[]rawRecipe `json:"recipes"`
}

// BuildRequest 把菜谱转换为合并服务请求，食材数据无法解析的菜谱按空食材处理
func BuildRequest(recipes []models.RecipeInput) models.ConsolidationRequest {
	req := models.ConsolidationRequest{Recipes: make([]models.ConsolidationRecipe, 0, len(recipes))}
	for _, r := range recipes {
		ingredients := models.ParseIngredients(r.Ingredients)
		if len(ingredients) == 0 && len(r.Ingredients) > 0 {
			logger.Warn("菜谱食材数据无法解析，按空列表处理", "recipe_id", r.ID, "raw", utils.Preview(string(r.Ingredients), 100))
		}
		req.Recipes = append(req.Recipes, models.ConsolidationRecipe{
			ID:          strings.TrimSpace(r.ID),
			Name:        strings.TrimSpace(r.Name),
			Ingredients: ingredients,
		})
	}
	return req
}

// Consolidate 合并多个菜谱的食材，结果无效时返回 ErrInvalidConsolidation
func (s *ConsolidationService) Consolidate(ctx context.Context, recipes []models.RecipeInput) (*models.ConsolidationResult, error) {
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	if err := validateRecipes(recipes); err != nil {
		return nil, err
	}

	req := BuildRequest(recipes)
	start := time.Now()
	text, err := s.client.Consolidate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConsolidationUnavailable, err)
	}
	logger.Info("合并服务返回", "duration_ms", time.Since(start).Milliseconds(), "content_preview", utils.Preview(text, 200))

	result, err := parseConsolidation(text, req)
	if err != nil {
		logger.Error("合并结果校验失败", "error", err, "content", utils.Preview(text, 500))
		return nil, err
	}
	return result, nil
}

// validateRecipes 菜谱 id 不能为空且不能重复，否则合并结果无法对应回菜谱
func validateRecipes(recipes []models.RecipeInput) error {
	seen := make(map[string]struct{}, len(recipes))
	for i, r := range recipes {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return fmt.Errorf("%w: recipes[%d] 缺少 id", ErrInvalidParams, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: recipes[%d] id %q 重复", ErrInvalidParams, i, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// parseConsolidation 提取并校验合并结果
func parseConsolidation(text string, req models.ConsolidationRequest) (*models.ConsolidationResult, error) {
	raw, ok := utils.ExtractFirstJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: 响应中没有JSON对象", ErrInvalidConsolidation)
	}

	var parsed rawResult
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConsolidation, err)
	}
	if parsed.Common == nil || parsed.Recipes == nil {
		return nil, fmt.Errorf("%w: 缺少 common 或 recipes", ErrInvalidConsolidation)
	}

	byID := make(map[string]models.ConsolidationRecipe, len(req.Recipes))
	byName := make(map[string]models.ConsolidationRecipe, len(req.Recipes))
	for _, r := range req.Recipes {
		byID[r.ID] = r
		byName[r.Name] = r
	}

	result := &models.ConsolidationResult{
		Common:  make([]models.ConsolidatedItem, 0, len(*parsed.Common)),
		Recipes: make([]models.ConsolidatedRecipe, 0, len(*parsed.Recipes)),
	}

	for i, it := range *parsed.Common {
		item, err := toConsolidatedItem(it)
		if err != nil {
			return nil, fmt.Errorf("%w: common[%d] %v", ErrInvalidConsolidation, i, err)
		}
		result.Common = append(result.Common, item)
	}

	for i, rr := range *parsed.Recipes {
		recipe, ok := matchRecipe(rr, byID, byName)
		if !ok {
			return nil, fmt.Errorf("%w: recipes[%d] 不属于提交的菜谱", ErrInvalidConsolidation, i)
		}
		if rr.Items == nil {
			return nil, fmt.Errorf("%w: recipes[%d] 缺少 items", ErrInvalidConsolidation, i)
		}
		group := models.ConsolidatedRecipe{
			RecipeID:   recipe.ID,
			RecipeName: recipe.Name,
			Items:      make([]models.ConsolidatedItem, 0, len(*rr.Items)),
		}
		for j, it := range *rr.Items {
			item, err := toConsolidatedItem(it)
			if err != nil {
				return nil, fmt.Errorf("%w: recipes[%d].items[%d] %v", ErrInvalidConsolidation, i, j, err)
			}
			group.Items = append(group.Items, item)
		}
		result.Recipes = append(result.Recipes, group)
	}

	return result, nil
}

func matchRecipe(rr rawRecipe, byID, byName map[string]models.ConsolidationRecipe) (models.ConsolidationRecipe, bool) {
	if rr.RecipeID != nil {
		if r, ok := byID[strings.TrimSpace(*rr.RecipeID)]; ok {
			return r, true
		}
	}
	if rr.RecipeName != nil {
		if r, ok := byName[strings.TrimSpace(*rr.RecipeName)]; ok {
			return r, true
		}
	}
	return models.ConsolidationRecipe{}, false
}

func toConsolidatedItem(it rawItem) (models.ConsolidatedItem, error) {
	if it.Name == nil || utils.NormalizeItemName(*it.Name) == "" {
		return models.ConsolidatedItem{}, errors.New("缺少 name")
	}
	if it.Amount == nil {
		return models.ConsolidatedItem{}, errors.New("缺少 amount")
	}
	name := utils.NormalizeItemName(*it.Name)
	amount := strings.TrimSpace(*it.Amount)
	if amount == "" {
		amount = models.AsNeeded
	}
	category := ""
	if it.Category != nil {
		category = *it.Category
	}
	return models.ConsolidatedItem{
		Name:     name,
		Amount:   amount,
		Category: ResolveCategory(category, name),
	}, nil
}

// Regenerate 重新生成某天的清单。
// 第一阶段删除已有的 common/recipe 项（保留 memo），第二阶段批量写入；两阶段之间没有事务，
// 第二阶段失败时返回 ErrPartialRegeneration，再次调用即可恢复。
func (s *ConsolidationService) Regenerate(ctx context.Context, coupleID string, date time.Time, recipes []models.RecipeInput) (*RegenerateResult, error) {
	result, err := s.Consolidate(ctx, recipes)
	if err != nil {
		return nil, err
	}

	// 写入前全部校验，有一项不合法就不删除旧项
	items := result.ToNewItems()
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("%w: items[%d] %v", ErrInvalidConsolidation, i, err)
		}
	}

	deleted, err := s.repo.DeleteGenerated(ctx, coupleID, date)
	if err != nil {
		return nil, fmt.Errorf("删除旧的采购项失败: %w", err)
	}
	logger.Info("已删除旧的采购项", "couple_id", coupleID, "date", models.FormatListDate(date), "deleted", deleted)

	created, err := s.repo.CreateMany(ctx, coupleID, date, items)
	if err != nil {
		logger.Error("写入新的采购项失败，清单处于部分为空状态",
			"couple_id", coupleID, "date", models.FormatListDate(date), "deleted", deleted, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPartialRegeneration, err)
	}

	logger.Info("清单重新生成完成", "couple_id", coupleID, "date", models.FormatListDate(date),
		"common", len(result.Common), "recipes", len(result.Recipes), "created", created)
	return &RegenerateResult{Result: result, Deleted: deleted, Created: created}, nil
}
