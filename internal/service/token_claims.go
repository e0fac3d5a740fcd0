package service

import "github.com/golang-jwt/jwt/v5"

// TokenClaims 访问令牌声明
// 令牌由外部账号系统签发，本服务只做校验与身份提取。
type TokenClaims struct {
	UserID uint `json:"user_id"`
	Admin  bool `json:"admin"`
	jwt.RegisteredClaims
}
