package models

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// CreateItemsRequest 批量新增购物项请求体
type CreateItemsRequest struct {
	CoupleID string            `json:"coupleId" example:"c_1001"`
	Date     string            `json:"date" example:"2026-10-19"`
	Items    []NewShoppingItem `json:"items"`
}

// CreateItemsResponse 批量新增结果
type CreateItemsResponse struct {
	Count int `json:"count" example:"3"`
}

// PatchCheckedRequest 勾选状态更新请求体
type PatchCheckedRequest struct {
	Checked *bool `json:"checked" example:"true"`
}

// DeleteResponse 删除结果
type DeleteResponse struct {
	Deleted bool `json:"deleted" example:"true"`
}

// ConsolidateRequest 重新生成清单请求体
type ConsolidateRequest struct {
	CoupleID string        `json:"coupleId" example:"c_1001"`
	Date     string        `json:"date" example:"2026-10-19"`
	Recipes  []RecipeInput `json:"recipes"`
}

// ConsolidateResponse 重新生成清单结果
type ConsolidateResponse struct {
	ConsolidationResult
	Deleted int64 `json:"deleted" example:"5"`
	Created int   `json:"created" example:"8"`
}
