package services

import (
	"context"
	"time"

	"couple_kitchen/models"
)

// ShoppingRepository 购物清单存储接口，按 (coupleId, listDate) 划分
type ShoppingRepository interface {
	// 按创建顺序返回某天的全部购物项
	List(ctx context.Context, coupleID string, date time.Time) ([]models.ShoppingItem, error)

	// 批量追加购物项，返回写入数量
	CreateMany(ctx context.Context, coupleID string, date time.Time, items []models.NewShoppingItem) (int, error)

	// 更新勾选状态并返回最新的购物项
	PatchChecked(ctx context.Context, id string, checked bool) (*models.ShoppingItem, error)

	Delete(ctx context.Context, id string) error

	// 删除某天所有 common/recipe 项，保留 memo
	DeleteGenerated(ctx context.Context, coupleID string, date time.Time) (int64, error)
}

// ConsolidationClient 外部食材合并服务，返回原始文本（可能夹带非JSON内容）
type ConsolidationClient interface {
	Consolidate(ctx context.Context, req models.ConsolidationRequest) (string, error)
}
