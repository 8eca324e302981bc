package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"couple_kitchen/logger"
	"couple_kitchen/models"

	"github.com/google/uuid"
)

const itemColumns = `id, couple_id, list_date, name, amount, category, checked, item_type, recipe_id, recipe_name`

// ShoppingRepo MySQL 购物清单存储
type ShoppingRepo struct {
	db *sql.DB
}

// NewShoppingRepo 创建购物清单存储
func NewShoppingRepo(conn *sql.DB) *ShoppingRepo {
	return &ShoppingRepo{db: conn}
}

// =====================
// 查询
// =====================

// List 按 created_at, position 顺序返回某天的购物项
func (r *ShoppingRepo) List(ctx context.Context, coupleID string, date time.Time) ([]models.ShoppingItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM shopping_items
		WHERE couple_id = ? AND list_date = ?
		ORDER BY created_at, position
	`, coupleID, models.FormatListDate(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.ShoppingItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(s rowScanner) (*models.ShoppingItem, error) {
	var (
		item       models.ShoppingItem
		listDate   time.Time
		category   string
		itemType   string
		recipeID   sql.NullString
		recipeName sql.NullString
	)
	if err := s.Scan(&item.ID, &item.CoupleID, &listDate, &item.Name, &item.Amount,
		&category, &item.Checked, &itemType, &recipeID, &recipeName); err != nil {
		return nil, err
	}
	item.ListDate = models.FormatListDate(listDate)
	item.Category = models.Category(category)
	item.Type = models.ItemType(itemType)
	item.RecipeID = recipeID.String
	item.RecipeName = recipeName.String
	return &item, nil
}

// =====================
// 写入
// =====================

// CreateMany 单条 INSERT 批量写入，同一批次共用 created_at，用 position 保留提交顺序
func (r *ShoppingRepo) CreateMany(ctx context.Context, coupleID string, date time.Time, items []models.NewShoppingItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	now := time.Now()
	placeholders := make([]string, 0, len(items))
	args := make([]interface{}, 0, len(items)*11)
	for i, it := range items {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?)")
		args = append(args,
			uuid.NewString(), coupleID, models.FormatListDate(date), it.Name, it.Amount, string(it.Category),
			string(it.Type), nullString(it.RecipeID), nullString(it.RecipeName), i, now,
		)
	}

	query := `INSERT INTO shopping_items
		(id, couple_id, list_date, name, amount, category, checked, item_type, recipe_id, recipe_name, position, created_at)
		VALUES ` + strings.Join(placeholders, ", ")
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("批量写入购物项失败: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return len(items), nil
	}
	return int(affected), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// PatchChecked 更新勾选状态后回读，购物项不存在时返回 sql.ErrNoRows
func (r *ShoppingRepo) PatchChecked(ctx context.Context, id string, checked bool) (*models.ShoppingItem, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE shopping_items SET checked = ? WHERE id = ?`, checked, id); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM shopping_items WHERE id = ?`, id)
	return scanItem(row)
}

// Delete 删除购物项，购物项不存在时返回 sql.ErrNoRows
func (r *ShoppingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteGenerated 删除某天所有由合并生成的购物项，memo 不受影响
func (r *ShoppingRepo) DeleteGenerated(ctx context.Context, coupleID string, date time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM shopping_items
		WHERE couple_id = ? AND list_date = ? AND item_type IN ('common', 'recipe')
	`, coupleID, models.FormatListDate(date))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteBefore 清理 list_date 早于 before 的历史清单
func (r *ShoppingRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_items WHERE list_date < ?`, models.FormatListDate(before))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	logger.Info("清理历史购物清单", "before", models.FormatListDate(before), "deleted", n)
	return n, nil
}
