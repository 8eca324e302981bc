package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple_kitchen/models"
)

var listDate = time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)

func newMockRepo(t *testing.T) (*ShoppingRepo, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewShoppingRepo(conn), mock
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "couple_id", "list_date", "name", "amount", "category", "checked", "item_type", "recipe_id", "recipe_name",
	})
}

func TestShoppingRepo_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM shopping_items`)).
		WithArgs("c1", "2026-10-19").
		WillReturnRows(itemRows().
			AddRow("a", "c1", listDate, "保鲜袋", "1卷", "other", false, "memo", nil, nil).
			AddRow("b", "c1", listDate, "盐", "适量", "seasoning", true, "recipe", "r1", "番茄炒蛋"))

	items, err := repo.List(context.Background(), "c1", listDate)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, models.ShoppingItem{
		ID: "a", CoupleID: "c1", ListDate: "2026-10-19", Name: "保鲜袋", Amount: "1卷",
		Category: models.CategoryOther, Type: models.ItemTypeMemo,
	}, items[0])
	assert.True(t, items[1].Checked)
	assert.Equal(t, "r1", items[1].RecipeID)
	assert.Equal(t, "番茄炒蛋", items[1].RecipeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingRepo_ListOrdersByCreation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`ORDER BY created_at, position`).
		WithArgs("c1", "2026-10-19").
		WillReturnRows(itemRows())

	items, err := repo.List(context.Background(), "c1", listDate)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingRepo_CreateMany(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO shopping_items`)).
		WithArgs(
			sqlmock.AnyArg(), "c1", "2026-10-19", "鸡蛋", "1盒", "dairy_egg", "common", nil, nil, 0, sqlmock.AnyArg(),
			sqlmock.AnyArg(), "c1", "2026-10-19", "盐", "适量", "seasoning", "recipe", "r1", "番茄炒蛋", 1, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.CreateMany(context.Background(), "c1", listDate, []models.NewShoppingItem{
		{Name: "鸡蛋", Amount: "1盒", Category: models.CategoryDairyEgg, Type: models.ItemTypeCommon},
		{Name: "盐", Amount: "适量", Category: models.CategorySeasoning, Type: models.ItemTypeRecipe, RecipeID: "r1", RecipeName: "番茄炒蛋"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingRepo_CreateManyEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	n, err := repo.CreateMany(context.Background(), "c1", listDate, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingRepo_PatchChecked(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE shopping_items SET checked = ? WHERE id = ?`)).
		WithArgs(true, "a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shopping_items WHERE id = ?`)).
		WithArgs("a").
		WillReturnRows(itemRows().AddRow("a", "c1", listDate, "牛奶", "2盒", "dairy_egg", true, "memo", nil, nil))

	item, err := repo.PatchChecked(context.Background(), "a", true)
	require.NoError(t, err)
	assert.True(t, item.Checked)
	assert.Equal(t, "牛奶", item.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingRepo_PatchCheckedMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE shopping_items`)).
		WithArgs(false, "x").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shopping_items WHERE id = ?`)).
		WithArgs("x").
		WillReturnRows(itemRows())

	_, err := repo.PatchChecked(context.Background(), "x", false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingRepo_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shopping_items WHERE id = ?`)).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shopping_items WHERE id = ?`)).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "a"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "a"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingRepo_DeleteGeneratedKeepsMemos(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`item_type IN ('common', 'recipe')`)).
		WithArgs("c1", "2026-10-19").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteGenerated(context.Background(), "c1", listDate)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingRepo_DeleteBefore(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shopping_items WHERE list_date < ?`)).
		WithArgs("2026-09-19").
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.DeleteBefore(context.Background(), listDate.AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
