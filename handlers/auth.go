package handlers

import (
	"net/http"

	"couple_kitchen/logger"
	"couple_kitchen/models"
	"couple_kitchen/utils"
)

// SignatureMiddleware 校验 timestamp 和 Authorization 请求头；apiKey 为空时不校验
func SignatureMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timestamp := r.Header.Get("timestamp")
			if !utils.VerifyAuthorization(apiKey, timestamp, r.Header.Get("Authorization")) {
				logger.Warn("请求签名校验失败", "path", r.URL.Path, "remote", r.RemoteAddr, "timestamp", timestamp)
				utils.WriteErrorResponse(w, models.CodeUnauthorized, map[string]interface{}{})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
