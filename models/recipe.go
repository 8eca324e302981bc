package models

import (
	"encoding/json"
	"strings"
)

// Ingredient 菜谱中的一种食材及其烹饪用量
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// RecipeInput 参与合并的菜谱，ingredients 保留原始JSON以便容错解析
type RecipeInput struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Ingredients json.RawMessage `json:"ingredients" swaggertype:"array,object"`
}

// ParseIngredients 解析食材数据：支持对象数组，或内容为对象数组的JSON字符串。
// 其余任何格式都返回空列表，不返回错误。
func ParseIngredients(raw json.RawMessage) []Ingredient {
	if len(raw) == 0 {
		return []Ingredient{}
	}

	var list []Ingredient
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanIngredients(list)
	}

	// 数据库中以字符串形式保存的食材列表
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &list); err == nil {
			return cleanIngredients(list)
		}
	}
	return []Ingredient{}
}

func cleanIngredients(list []Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(list))
	for _, ing := range list {
		ing.Name = strings.TrimSpace(ing.Name)
		ing.Amount = strings.TrimSpace(ing.Amount)
		if ing.Name == "" {
			continue
		}
		out = append(out, ing)
	}
	return out
}

// ConsolidationRecipe 发送给合并服务的菜谱
type ConsolidationRecipe struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
}

// ConsolidationRequest 合并服务请求体
type ConsolidationRequest struct {
	Recipes []ConsolidationRecipe `json:"recipes"`
}

// ConsolidatedItem 合并后的采购项
type ConsolidatedItem struct {
	Name     string   `json:"name"`
	Amount   string   `json:"amount"`
	Category Category `json:"category"`
}

// ConsolidatedRecipe 只被一个菜谱需要的采购项
type ConsolidatedRecipe struct {
	RecipeID   string             `json:"recipeId"`
	RecipeName string             `json:"recipeName"`
	Items      []ConsolidatedItem `json:"items"`
}

// ConsolidationResult 合并结果
type ConsolidationResult struct {
	Common  []ConsolidatedItem   `json:"common"`
	Recipes []ConsolidatedRecipe `json:"recipes"`
}

// ToNewItems 将合并结果展开为可批量写入的购物项
func (r *ConsolidationResult) ToNewItems() []NewShoppingItem {
	items := make([]NewShoppingItem, 0, len(r.Common))
	for _, c := range r.Common {
		items = append(items, NewShoppingItem{
			Name:     c.Name,
			Amount:   c.Amount,
			Category: c.Category,
			Type:     ItemTypeCommon,
		})
	}
	for _, rec := range r.Recipes {
		for _, it := range rec.Items {
			items = append(items, NewShoppingItem{
				Name:       it.Name,
				Amount:     it.Amount,
				Category:   it.Category,
				Type:       ItemTypeRecipe,
				RecipeID:   rec.RecipeID,
				RecipeName: rec.RecipeName,
			})
		}
	}
	return items
}
