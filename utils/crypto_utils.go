package utils

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"
)

// CalculateMD5 计算字符串的MD5哈希值，返回32位小写十六进制字符串
func CalculateMD5(input string) string {
	hasher := md5.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// CalculateAuthorizationHeader 计算Authorization头的值：apiKey+timestamp后4位的MD5值
func CalculateAuthorizationHeader(apiKey string, timestampLastFourDigits string) string {
	authStr := apiKey + timestampLastFourDigits
	return CalculateMD5(authStr)
}

// SignRequest 生成请求签名需要的timestamp和Authorization头
func SignRequest(apiKey string, now time.Time) (timestamp string, authorization string) {
	timestamp = strconv.FormatInt(now.UnixMilli(), 10)
	return timestamp, CalculateAuthorizationHeader(apiKey, lastFour(timestamp))
}

// VerifyAuthorization 校验请求签名
func VerifyAuthorization(apiKey, timestamp, authorization string) bool {
	if len(timestamp) < 4 || authorization == "" {
		return false
	}
	if _, err := strconv.ParseInt(timestamp, 10, 64); err != nil {
		return false
	}
	expected := CalculateAuthorizationHeader(apiKey, lastFour(timestamp))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(authorization)) == 1
}

func lastFour(timestamp string) string {
	if len(timestamp) <= 4 {
		return timestamp
	}
	return timestamp[len(timestamp)-4:]
}
