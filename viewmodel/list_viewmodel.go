package viewmodel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"couple_kitchen/gesture"
	"couple_kitchen/logger"
	"couple_kitchen/models"
	"couple_kitchen/services"
)

// Store 视图模型依赖的购物清单存储，已绑定 (coupleId, date)
type Store interface {
	List(ctx context.Context) ([]models.ShoppingItem, error)
	CreateMany(ctx context.Context, items []models.NewShoppingItem) (int, error)
	PatchChecked(ctx context.Context, id string, checked bool) (*models.ShoppingItem, error)
	Delete(ctx context.Context, id string) error
}

// Notifier 向用户展示一次性的失败提示
type Notifier interface {
	Notify(message string)
}

// NotifierFunc 函数形式的 Notifier
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type logNotifier struct{}

func (logNotifier) Notify(message string) {
	logger.Warn("购物清单操作失败", "message", message)
}

// GroupKey 购物项所在分组：memo、common 或 recipe:<recipeId>
type GroupKey string

const (
	GroupMemo   GroupKey = "memo"
	GroupCommon GroupKey = "common"
)

// RecipeGroupKey 菜谱分组的 key
func RecipeGroupKey(recipeID string) GroupKey {
	return GroupKey("recipe:" + recipeID)
}

// GroupKeyOf 购物项所属分组
func GroupKeyOf(item models.ShoppingItem) GroupKey {
	switch item.Type {
	case models.ItemTypeCommon:
		return GroupCommon
	case models.ItemTypeRecipe:
		return RecipeGroupKey(item.RecipeID)
	default:
		return GroupMemo
	}
}

// State 页面展示的清单状态
type State struct {
	Memo    []models.ShoppingItem
	Common  []models.ShoppingItem
	Recipes []models.RecipeGroup
	Loaded  bool
	Loading bool
}

// 提示文案
const (
	MsgLoadFailed   = "加载购物清单失败"
	MsgToggleFailed = "更新勾选状态失败，已恢复"
	MsgDeleteFailed = "删除失败，请重试"
	MsgAddFailed    = "添加失败，请重试"
	MsgClearFailed  = "部分已完成项删除失败"
)

var ErrEmptyName = errors.New("名称不能为空")

// ListViewModel 某天购物清单页面的状态。
// 每次进入页面创建一个，离开时 Close；Close 之后到达的响应全部丢弃。
type ListViewModel struct {
	store    Store
	coupleID string
	date     string
	notifier Notifier
	onChange func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	closed  bool
	loadSeq uint64
}

// New 创建视图模型；notifier 为 nil 时写日志，onChange 可以为 nil
func New(store Store, coupleID, date string, notifier Notifier, onChange func(State)) *ListViewModel {
	if notifier == nil {
		notifier = logNotifier{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ListViewModel{
		store:    store,
		coupleID: strings.TrimSpace(coupleID),
		date:     strings.TrimSpace(date),
		notifier: notifier,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
		state:    emptyState(),
	}
}

func emptyState() State {
	return State{
		Memo:    []models.ShoppingItem{},
		Common:  []models.ShoppingItem{},
		Recipes: []models.RecipeGroup{},
	}
}

// Partition 按服务端顺序把购物项分到 memo、common 和各菜谱分组
func Partition(items []models.ShoppingItem) State {
	st := emptyState()
	index := make(map[string]int)
	for _, it := range items {
		switch GroupKeyOf(it) {
		case GroupMemo:
			st.Memo = append(st.Memo, it)
		case GroupCommon:
			st.Common = append(st.Common, it)
		default:
			i, ok := index[it.RecipeID]
			if !ok {
				i = len(st.Recipes)
				index[it.RecipeID] = i
				st.Recipes = append(st.Recipes, models.RecipeGroup{
					RecipeID:   it.RecipeID,
					RecipeName: it.RecipeName,
					Items:      []models.ShoppingItem{},
				})
			}
			st.Recipes[i].Items = append(st.Recipes[i].Items, it)
		}
	}
	return st
}

func (vm *ListViewModel) hasScope() bool {
	return vm.coupleID != "" && vm.date != ""
}

// update 在锁内修改状态，锁外通知监听者
func (vm *ListViewModel) update(fn func(st *State) bool) {
	vm.mu.Lock()
	if vm.closed || !fn(&vm.state) {
		vm.mu.Unlock()
		return
	}
	snapshot := vm.state.clone()
	onChange := vm.onChange
	vm.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
}

func (vm *ListViewModel) notify(message string) {
	vm.mu.Lock()
	closed := vm.closed
	vm.mu.Unlock()
	if !closed {
		vm.notifier.Notify(message)
	}
}

// Load 拉取最新清单；缺少 coupleId/date 时显示空清单，不访问存储
func (vm *ListViewModel) Load(ctx context.Context) error {
	if !vm.hasScope() {
		vm.update(func(st *State) bool {
			*st = emptyState()
			st.Loaded = true
			return true
		})
		return nil
	}

	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return nil
	}
	vm.loadSeq++
	seq := vm.loadSeq
	vm.mu.Unlock()

	vm.update(func(st *State) bool {
		st.Loading = true
		return true
	})

	items, err := vm.store.List(ctx)

	var stale bool
	vm.update(func(st *State) bool {
		if seq != vm.loadSeq {
			stale = true
			return false
		}
		if err != nil {
			st.Loading = false
			return true
		}
		*st = Partition(items)
		st.Loaded = true
		return true
	})
	if stale {
		logger.Debug("丢弃过期的清单响应", "couple_id", vm.coupleID, "date", vm.date)
		return nil
	}
	if err != nil {
		logger.Error("加载购物清单失败", "couple_id", vm.coupleID, "date", vm.date, "error", err)
		vm.notify(MsgLoadFailed)
		return err
	}
	return nil
}

// Refocus 页面重新可见时刷新
func (vm *ListViewModel) Refocus(ctx context.Context) error {
	return vm.Load(ctx)
}

// Toggle 乐观更新勾选状态，请求失败时恢复原值并提示
func (vm *ListViewModel) Toggle(ctx context.Context, id string, key GroupKey) error {
	var (
		previous bool
		found    bool
	)
	vm.update(func(st *State) bool {
		item := st.find(id, key)
		if item == nil {
			return false
		}
		found = true
		previous = item.Checked
		item.Checked = !previous
		return true
	})
	if !found {
		return nil
	}

	updated, err := vm.store.PatchChecked(ctx, id, !previous)
	if err != nil {
		logger.Warn("更新勾选状态失败，恢复原值", "id", id, "checked", previous, "error", err)
		vm.update(func(st *State) bool {
			item := st.find(id, key)
			if item == nil {
				return false
			}
			item.Checked = previous
			return true
		})
		vm.notify(MsgToggleFailed)
		return err
	}

	vm.update(func(st *State) bool {
		item := st.find(id, key)
		if item == nil || item.Checked == updated.Checked {
			return false
		}
		item.Checked = updated.Checked
		return true
	})
	return nil
}

// Delete 等待删除成功后才从本地移除
func (vm *ListViewModel) Delete(ctx context.Context, id string, key GroupKey) error {
	if err := vm.store.Delete(ctx, id); err != nil {
		logger.Warn("删除购物项失败", "id", id, "error", err)
		vm.notify(MsgDeleteFailed)
		return err
	}
	vm.update(func(st *State) bool {
		return st.remove(id, key)
	})
	return nil
}

// AddMemo 添加一条手动备忘，成功后重新加载
func (vm *ListViewModel) AddMemo(ctx context.Context, name, amount string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if !vm.hasScope() {
		return services.ErrMissingParams
	}
	_, err := vm.store.CreateMany(ctx, []models.NewShoppingItem{{
		Name:     name,
		Amount:   strings.TrimSpace(amount),
		Category: services.Classify(name),
		Type:     models.ItemTypeMemo,
	}})
	if err != nil {
		logger.Warn("添加备忘失败", "name", name, "error", err)
		vm.notify(MsgAddFailed)
		return err
	}
	return vm.Load(ctx)
}

// ClearCompleted 并发删除所有已勾选项，无论成败都重新加载
func (vm *ListViewModel) ClearCompleted(ctx context.Context) error {
	vm.mu.Lock()
	ids := vm.state.checkedIDs()
	vm.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}

	var (
		g      errgroup.Group
		failed atomic.Int32
	)
	g.SetLimit(8)
	for _, id := range ids {
		g.Go(func() error {
			if err := vm.store.Delete(ctx, id); err != nil {
				failed.Add(1)
				return err
			}
			return nil
		})
	}
	deleteErr := g.Wait()
	if deleteErr != nil {
		logger.Warn("清除已完成项部分失败", "total", len(ids), "failed", failed.Load(), "error", deleteErr)
		vm.notify(MsgClearFailed)
	}

	if err := vm.Load(ctx); err != nil {
		return errors.Join(deleteErr, err)
	}
	return deleteErr
}

// Snapshot 返回当前状态的副本
func (vm *ListViewModel) Snapshot() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state.clone()
}

// Counts 返回总数和已勾选数
func (vm *ListViewModel) Counts() (total, checked int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.each(func(it *models.ShoppingItem) {
		total++
		if it.Checked {
			checked++
		}
	})
	return total, checked
}

// SwipeRow 为某一行创建左滑删除手势，删除失败时行回到关闭状态
func (vm *ListViewModel) SwipeRow(id string, key GroupKey, cfg gesture.Config) (*gesture.SwipeController, error) {
	var ctrl *gesture.SwipeController
	ctrl, err := gesture.NewSwipeController(cfg, func() {
		vm.mu.Lock()
		if vm.closed {
			vm.mu.Unlock()
			return
		}
		vm.wg.Add(1)
		vm.mu.Unlock()

		go func() {
			defer vm.wg.Done()
			if err := vm.Delete(vm.ctx, id, key); err != nil {
				ctrl.Reset()
			}
		}()
	})
	if err != nil {
		return nil, err
	}
	return ctrl, nil
}

// Close 离开页面：之后的响应和通知都被忽略，并等待后台删除结束
func (vm *ListViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	vm.mu.Unlock()

	vm.cancel()
	vm.wg.Wait()
}

func (st *State) each(fn func(it *models.ShoppingItem)) {
	for i := range st.Memo {
		fn(&st.Memo[i])
	}
	for i := range st.Common {
		fn(&st.Common[i])
	}
	for g := range st.Recipes {
		for i := range st.Recipes[g].Items {
			fn(&st.Recipes[g].Items[i])
		}
	}
}

func (st *State) checkedIDs() []string {
	ids := make([]string, 0)
	st.each(func(it *models.ShoppingItem) {
		if it.Checked {
			ids = append(ids, it.ID)
		}
	})
	return ids
}

func (st *State) group(key GroupKey) *[]models.ShoppingItem {
	switch key {
	case GroupMemo:
		return &st.Memo
	case GroupCommon:
		return &st.Common
	}
	for g := range st.Recipes {
		if RecipeGroupKey(st.Recipes[g].RecipeID) == key {
			return &st.Recipes[g].Items
		}
	}
	return nil
}

func (st *State) find(id string, key GroupKey) *models.ShoppingItem {
	items := st.group(key)
	if items == nil {
		return nil
	}
	for i := range *items {
		if (*items)[i].ID == id {
			return &(*items)[i]
		}
	}
	return nil
}

func (st *State) remove(id string, key GroupKey) bool {
	items := st.group(key)
	if items == nil {
		return false
	}
	for i := range *items {
		if (*items)[i].ID == id {
			*items = append((*items)[:i:i], (*items)[i+1:]...)
			st.dropEmptyRecipeGroups()
			return true
		}
	}
	return false
}

func (st *State) dropEmptyRecipeGroups() {
	kept := st.Recipes[:0]
	for _, g := range st.Recipes {
		if len(g.Items) > 0 {
			kept = append(kept, g)
		}
	}
	st.Recipes = kept
}

func (st State) clone() State {
	out := State{
		Memo:    append([]models.ShoppingItem{}, st.Memo...),
		Common:  append([]models.ShoppingItem{}, st.Common...),
		Recipes: make([]models.RecipeGroup, 0, len(st.Recipes)),
		Loaded:  st.Loaded,
		Loading: st.Loading,
	}
	for _, g := range st.Recipes {
		g.Items = append([]models.ShoppingItem{}, g.Items...)
		out.Recipes = append(out.Recipes, g)
	}
	return out
}
