package services

import (
	"fmt"
	"strings"

	"couple_kitchen/models"
)

// describeRecipes 为每个菜谱生成一段文字描述：菜名 + 食材用量
func describeRecipes(req models.ConsolidationRequest) string {
	var sb strings.Builder
	for i, r := range req.Recipes {
		fmt.Fprintf(&sb, "菜谱%d（id: %s）：%s\n", i+1, r.ID, r.Name)
		if len(r.Ingredients) == 0 {
			sb.WriteString("  食材：无\n")
			continue
		}
		parts := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			if ing.Amount == "" {
				parts = append(parts, ing.Name)
			} else {
				parts = append(parts, ing.Name+" "+ing.Amount)
			}
		}
		sb.WriteString("  食材：" + strings.Join(parts, "、") + "\n")
	}
	return sb.String()
}

// buildConsolidationPrompt 构建食材合并提示词
func buildConsolidationPrompt(req models.ConsolidationRequest) string {
	return fmt.Sprintf(`你是一个帮情侣整理买菜清单的助手。下面是今天要做的菜谱和它们需要的食材：

%s
请按以下规则整理成采购清单：
1. 合并不同菜谱中实际是同一种东西的食材（例如"鸡蛋"和"土鸡蛋"、"葱"和"小葱"）。
2. 被两个及以上菜谱需要的食材放入 common；只被一个菜谱需要的食材放入对应菜谱的 items。
3. 每个食材的 category 只能是以下之一：vegetable, fruit, meat, seafood, dairy_egg, seasoning, other。
4. amount 写成去超市购买的数量（例如"300g"、"1盒"、"5个"），家里常备的调料写"%s"。

只返回JSON，不要添加任何其他说明或文本，格式如下：
{
  "common": [{"name": "食材", "amount": "采购数量", "category": "分类"}],
  "recipes": [
    {"recipeId": "菜谱id", "recipeName": "菜名", "items": [{"name": "食材", "amount": "采购数量", "category": "分类"}]}
  ]
}`, describeRecipes(req), models.AsNeeded)
}
