package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 购物清单日期格式（只有日期，没有时间）
const DateLayout = "2006-01-02"

// AsNeeded 储备调料的采购数量标记
const AsNeeded = "适量"

// Category 食材分类
type Category string

const (
	CategoryVegetable Category = "vegetable"
	CategoryFruit     Category = "fruit"
	CategoryMeat      Category = "meat"
	CategorySeafood   Category = "seafood"
	CategoryDairyEgg  Category = "dairy_egg"
	CategorySeasoning Category = "seasoning"
	CategoryOther     Category = "other"
)

// Categories 全部分类，按展示顺序排列
var Categories = []Category{
	CategoryVegetable,
	CategoryFruit,
	CategoryMeat,
	CategorySeafood,
	CategoryDairyEgg,
	CategorySeasoning,
	CategoryOther,
}

// CategoryLabels 分类对应的中文名称
var CategoryLabels = map[Category]string{
	CategoryVegetable: "蔬菜",
	CategoryFruit:     "水果",
	CategoryMeat:      "肉类",
	CategorySeafood:   "海鲜",
	CategoryDairyEgg:  "蛋奶",
	CategorySeasoning: "调料",
	CategoryOther:     "其他",
}

// ParseCategory 将枚举值或中文名称解析为分类
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if s == string(c) || s == CategoryLabels[c] {
			return c, true
		}
	}
	switch s {
	case "dairy/egg", "dairy", "egg", "蛋奶类", "乳蛋":
		return CategoryDairyEgg, true
	}
	return "", false
}

// ItemType 购物项所属分组类型
type ItemType string

const (
	ItemTypeMemo   ItemType = "memo"
	ItemTypeCommon ItemType = "common"
	ItemTypeRecipe ItemType = "recipe"
)

// Valid 判断类型是否合法
func (t ItemType) Valid() bool {
	return t == ItemTypeMemo || t == ItemTypeCommon || t == ItemTypeRecipe
}

// ShoppingItem 购物清单中的一项
type ShoppingItem struct {
	ID         string   `json:"id"`
	CoupleID   string   `json:"coupleId"`
	ListDate   string   `json:"listDate"`
	Name       string   `json:"name"`
	Amount     string   `json:"amount"`
	Category   Category `json:"category"`
	Checked    bool     `json:"checked"`
	Type       ItemType `json:"type"`
	RecipeID   string   `json:"recipeId,omitempty"`
	RecipeName string   `json:"recipeName,omitempty"`
}

// NewShoppingItem 批量创建时的单项内容
type NewShoppingItem struct {
	Name       string   `json:"name"`
	Amount     string   `json:"amount"`
	Category   Category `json:"category"`
	Type       ItemType `json:"type"`
	RecipeID   string   `json:"recipeId,omitempty"`
	RecipeName string   `json:"recipeName,omitempty"`
}

// Validate 校验类型与菜谱字段的对应关系：type=recipe 当且仅当 recipeId 存在
func (it NewShoppingItem) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("name 不能为空")
	}
	if !it.Type.Valid() {
		return fmt.Errorf("无效的类型: %q", it.Type)
	}
	if it.Type == ItemTypeRecipe && it.RecipeID == "" {
		return fmt.Errorf("recipe 类型必须包含 recipeId")
	}
	if it.Type != ItemTypeRecipe && (it.RecipeID != "" || it.RecipeName != "") {
		return fmt.Errorf("%s 类型不能包含 recipeId/recipeName", it.Type)
	}
	return nil
}

// RecipeGroup 同一菜谱下的购物项，加载时由 type=recipe 的项重建，不持久化
type RecipeGroup struct {
	RecipeID   string         `json:"recipeId"`
	RecipeName string         `json:"recipeName"`
	Items      []ShoppingItem `json:"items"`
}

// ParseListDate 解析 YYYY-MM-DD 格式的清单日期
func ParseListDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q: %w", s, err)
	}
	return d, nil
}

// FormatListDate 将日期格式化为 YYYY-MM-DD
func FormatListDate(t time.Time) string {
	return t.Format(DateLayout)
}
