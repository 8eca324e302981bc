package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"couple_kitchen/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want models.Category
	}{
		{"鸡蛋", models.CategoryDairyEgg},
		{"土鸡蛋", models.CategoryDairyEgg},
		{"牛奶", models.CategoryDairyEgg},
		{"基围虾", models.CategorySeafood},
		{"虾", models.CategorySeafood},
		{"蟹肉棒", models.CategorySeafood},
		{"鸡胸肉", models.CategoryMeat},
		{"五花肉", models.CategoryMeat},
		{"鸡精", models.CategorySeasoning},
		{"盐", models.CategorySeasoning},
		{"糖", models.CategorySeasoning},
		{"菜籽油", models.CategorySeasoning},
		{"肉桂", models.CategorySeasoning},
		{"肉桂粉", models.CategorySeasoning},
		{"肉豆蔻", models.CategorySeasoning},
		{"油麦菜", models.CategoryVegetable},
		{"西红柿", models.CategoryVegetable},
		{"青椒", models.CategoryVegetable},
		{"柠檬", models.CategoryFruit},
		{"哈密瓜", models.CategoryFruit},
		{"保鲜袋", models.CategoryOther},
		{"", models.CategoryOther},
		{"   ", models.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestClassify_TotalOverEnum(t *testing.T) {
	valid := make(map[models.Category]bool)
	for _, c := range models.Categories {
		valid[c] = true
	}
	inputs := []string{"鸡蛋", "虾", "xyz", "牛肉", "葱", "苹果", "醋", "1234", "🍕"}
	for _, in := range inputs {
		assert.True(t, valid[Classify(in)], "classify(%q) returned %q", in, Classify(in))
	}
}

func TestResolveCategory(t *testing.T) {
	assert.Equal(t, models.CategoryMeat, ResolveCategory("meat", "鸡蛋"))
	assert.Equal(t, models.CategorySeafood, ResolveCategory("海鲜", "whatever"))
	assert.Equal(t, models.CategoryDairyEgg, ResolveCategory("dairy/egg", "x"))
	assert.Equal(t, models.CategoryDairyEgg, ResolveCategory("unknown", "鸡蛋"))
	assert.Equal(t, models.CategoryOther, ResolveCategory("", "保鲜袋"))
}
