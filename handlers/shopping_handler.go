package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"couple_kitchen/config"
	_ "couple_kitchen/docs" // 导入 swagger 文档
	"couple_kitchen/logger"
	"couple_kitchen/models"
	"couple_kitchen/services"
	"couple_kitchen/utils"
)

// ShoppingHandler 购物清单和食材合并接口
type ShoppingHandler struct {
	shopping      *services.ShoppingService
	consolidation *services.ConsolidationService
}

// NewShoppingHandler 创建接口处理器
func NewShoppingHandler(shopping *services.ShoppingService, consolidation *services.ConsolidationService) *ShoppingHandler {
	return &ShoppingHandler{shopping: shopping, consolidation: consolidation}
}

// ListHandler godoc
// @Summary 获取某天的购物清单
// @Description 按创建顺序返回 (coupleId, date) 下的全部购物项
// @Tags 购物清单
// @Produce json
// @Param coupleId query string true "情侣ID"
// @Param date query string true "日期 YYYY-MM-DD"
// @Success 200 {object} models.APIResponse "成功"
// @Router /shopping [get]
func (h *ShoppingHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.shopping.List(r.Context(), q.Get("coupleId"), q.Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, items)
}

// CreateHandler godoc
// @Summary 批量新增购物项
// @Description 追加购物项，不会覆盖已有内容；未给出有效分类的项按名称自动分类
// @Tags 购物清单
// @Accept json
// @Produce json
// @Param body body models.CreateItemsRequest true "购物项"
// @Success 200 {object} models.APIResponse "成功"
// @Router /shopping [post]
func (h *ShoppingHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemsRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	count, err := h.shopping.CreateMany(r.Context(), req.CoupleID, req.Date, req.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, models.CreateItemsResponse{Count: count})
}

// PatchCheckedHandler godoc
// @Summary 更新勾选状态
// @Tags 购物清单
// @Accept json
// @Produce json
// @Param id path string true "购物项ID"
// @Param body body models.PatchCheckedRequest true "勾选状态"
// @Success 200 {object} models.APIResponse "成功"
// @Router /shopping/{id} [patch]
func (h *ShoppingHandler) PatchCheckedHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.PatchCheckedRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if req.Checked == nil {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"params": []string{"checked"},
		})
		return
	}
	item, err := h.shopping.PatchChecked(r.Context(), id, *req.Checked)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, item)
}

// DeleteHandler godoc
// @Summary 删除购物项
// @Tags 购物清单
// @Produce json
// @Param id path string true "购物项ID"
// @Success 200 {object} models.APIResponse "成功"
// @Router /shopping/{id} [delete]
func (h *ShoppingHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.shopping.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, models.DeleteResponse{Deleted: true})
}

// ConsolidateHandler godoc
// @Summary 合并菜谱食材并重新生成当天清单
// @Description 删除当天已生成的 common/recipe 项（保留 memo）后写入新的合并结果
// @Tags 食材合并
// @Accept json
// @Produce json
// @Param body body models.ConsolidateRequest true "菜谱"
// @Success 200 {object} models.APIResponse "成功"
// @Router /shopping/consolidate [post]
func (h *ShoppingHandler) ConsolidateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ConsolidateRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	coupleID, date, err := services.ParseScope(req.CoupleID, req.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	res, err := h.consolidation.Regenerate(r.Context(), coupleID, date, req.Recipes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, models.ConsolidateResponse{
		ConsolidationResult: *res.Result,
		Deleted:             res.Deleted,
		Created:             res.Created,
	})
}

// writeServiceError 将服务层错误映射为响应码，统一返回 HTTP 200
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMissingParams):
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{})
	case errors.Is(err, services.ErrInvalidParams):
		utils.WriteCustomErrorResponse(w, models.CodeInvalidParams, err.Error(), map[string]interface{}{})
	case errors.Is(err, services.ErrNoRecipes):
		utils.WriteErrorResponse(w, models.CodeNoRecipes, map[string]interface{}{})
	case errors.Is(err, services.ErrInvalidConsolidation):
		utils.WriteCustomErrorResponse(w, models.CodeConsolidationError, err.Error(), map[string]interface{}{})
	case errors.Is(err, services.ErrPartialRegeneration):
		utils.WriteErrorResponse(w, models.CodePartialRegenerate, map[string]interface{}{})
	case utils.IsSQLNoRowsError(err):
		utils.WriteErrorResponse(w, models.CodeItemNotFound, map[string]interface{}{})
	case errors.Is(err, services.ErrConsolidationUnavailable):
		logger.Error("合并服务调用失败", "error", err)
		utils.WriteCustomErrorResponse(w, models.CodeThirdPartyAPIError, err.Error(), map[string]interface{}{})
	default:
		logger.Error("请求处理失败", "error", err)
		utils.WriteCustomErrorResponse(w, models.CodeServerError, err.Error(), map[string]interface{}{})
	}
}

// HealthHandler 健康检查
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, map[string]interface{}{"status": "ok"})
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(r chi.Router, cfg *config.Config, h *ShoppingHandler) {
	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Swagger JSON 的 URL
	))
	r.Get("/healthz", HealthHandler)

	r.Group(func(r chi.Router) {
		r.Use(SignatureMiddleware(cfg.Auth.APIKey))

		r.Get("/shopping", h.ListHandler)
		r.Post("/shopping", h.CreateHandler)
		r.Post("/shopping/consolidate", h.ConsolidateHandler)
		r.Patch("/shopping/{id}", h.PatchCheckedHandler)
		r.Delete("/shopping/{id}", h.DeleteHandler)
	})
}
