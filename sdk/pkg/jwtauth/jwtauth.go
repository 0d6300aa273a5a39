package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/soybean-go/admin-core/sdk/config"
)

// JwtPayloadKey 存放解析后 Claims 的 gin 上下文键
const JwtPayloadKey = "JWT_PAYLOAD"

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrWrongAudience   = errors.New("token audience mismatch")
	ErrWrongIssuer     = errors.New("token issuer mismatch")
)

// Claims 是签发给管理端的 JWT 载荷：标准字段之外带上用户名、
// 角色编码列表和所属域，供授权中间件构造判定主体。
type Claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"role"`
	Domain   string   `json:"domain"`
	Org      string   `json:"org,omitempty"`
	jwt.RegisteredClaims
}

// validationLeeway 时间类字段校验的容忍窗口，吸收节点间时钟漂移。
const validationLeeway = 60 * time.Second

// Valid 实现 jwt.Claims，覆盖 RegisteredClaims 的无 leeway 校验。
// exp 必须存在，iat/nbf 可缺省。
func (c *Claims) Valid() error {
	now := time.Now()
	if !c.VerifyExpiresAt(now.Add(-validationLeeway), true) {
		return jwt.ErrTokenExpired
	}
	if !c.VerifyIssuedAt(now.Add(validationLeeway), false) {
		return jwt.ErrTokenUsedBeforeIssued
	}
	if !c.VerifyNotBefore(now.Add(validationLeeway), false) {
		return jwt.ErrTokenNotValidYet
	}
	return nil
}

// Generate 用 HS256 签发 token，有效期取配置的 timeout 秒。
func Generate(cfg *config.JWT, userID, username string, roles []string, domain, org string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Roles:    roles,
		Domain:   domain,
		Org:      org,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.Timeout) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("签发token失败: %w", err)
	}
	return signed, nil
}

// Validate 校验签名、时效（经 Claims.Valid，60秒leeway）、受众与签发者。
func Validate(tokenString string, cfg *config.JWT) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if cfg.Audience != "" && !claims.VerifyAudience(cfg.Audience, true) {
		return nil, ErrWrongAudience
	}
	if cfg.Issuer != "" && !claims.VerifyIssuer(cfg.Issuer, true) {
		return nil, ErrWrongIssuer
	}
	return claims, nil
}

// ExtractClaims 从 gin 上下文取出解析后的 Claims，没有则返回 nil。
func ExtractClaims(c *gin.Context) *Claims {
	v, exists := c.Get(JwtPayloadKey)
	if !exists {
		return nil
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
