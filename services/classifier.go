package services

import (
	"strings"

	"couple_kitchen/models"
)

type categoryRule struct {
	category models.Category
	keywords []string
}

// categoryRules 分类规则，按顺序匹配，第一个命中的分类生效。
// 顺序约束：
//   - dairy_egg 在 meat 之前，"鸡蛋"含有"鸡"
//   - seasoning 在 meat 之前，"鸡精"含有"鸡"，"肉桂"含有"肉"
//   - seafood 在 meat 之前，"蟹肉棒"含有"肉"
//   - vegetable 在 fruit 之前，"番茄"按蔬菜处理
var categoryRules = []categoryRule{
	{models.CategoryDairyEgg, []string{
		"蛋", "奶", "芝士", "奶酪", "黄油", "酸奶", "淡奶油",
	}},
	{models.CategorySeasoning, []string{
		"盐", "糖", "酱油", "生抽", "老抽", "醋", "料酒", "蚝油", "香油", "麻油",
		"食用油", "花生油", "菜籽油", "橄榄油", "玉米油", "胡椒", "花椒", "八角", "桂皮", "香叶",
		"孜然", "辣椒粉", "辣椒面", "淀粉", "味精", "鸡精", "豆瓣酱", "番茄酱", "甜面酱", "芝麻酱",
		"五香粉", "十三香", "咖喱", "豆豉", "腐乳", "干辣椒", "肉桂", "肉豆蔻",
	}},
	{models.CategorySeafood, []string{
		"虾", "蟹", "鱼", "贝", "蛤", "蚝", "鱿", "墨鱼", "章鱼", "海带", "紫菜", "海参", "扇贝", "蛏",
	}},
	{models.CategoryMeat, []string{
		"肉", "排骨", "鸡", "鸭", "鹅", "牛", "羊", "猪", "里脊", "五花", "培根", "火腿", "香肠", "腊肠",
	}},
	{models.CategoryVegetable, []string{
		"菜", "葱", "姜", "蒜", "椒", "番茄", "西红柿", "土豆", "马铃薯", "茄子", "黄瓜", "萝卜",
		"豆腐", "豆芽", "豆角", "四季豆", "菇", "蘑", "木耳", "笋", "藕", "洋葱", "南瓜", "冬瓜", "丝瓜",
		"苦瓜", "西兰花", "玉米", "芹", "韭", "香菜", "生菜", "山药", "芋头", "秋葵",
	}},
	{models.CategoryFruit, []string{
		"苹果", "香蕉", "梨", "橙", "橘", "柠檬", "葡萄", "草莓", "西瓜", "芒果", "桃", "樱桃", "蓝莓",
		"菠萝", "猕猴桃", "柚", "荔枝", "龙眼", "哈密瓜", "火龙果",
	}},
}

// Classify 根据名称判断食材分类，纯函数，未命中任何关键词时返回 other
func Classify(name string) models.Category {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return models.CategoryOther
	}
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}

// ResolveCategory 优先使用给定的分类值，无法识别时按名称分类
func ResolveCategory(raw string, name string) models.Category {
	if c, ok := models.ParseCategory(raw); ok {
		return c
	}
	return Classify(name)
}
