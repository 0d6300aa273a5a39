package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soybean-go/admin-core/sdk/config"
	"github.com/soybean-go/admin-core/sdk/pkg/jwtauth"
	"github.com/soybean-go/admin-core/sdk/pkg/response"
)

// JwtAuth 认证中间件：解析 Authorization 头中的 Bearer token，校验后把
// Claims 和授权中间件使用的 Identity 挂到请求上下文。本中间件必须在
// AuthCheck 之前执行。
func JwtAuth(cfg *config.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			response.Error(c, http.StatusUnauthorized, nil, msgNoSubjects)
			return
		}

		claims, err := jwtauth.Validate(token, cfg)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, err, "Invalid token")
			return
		}

		c.Set(jwtauth.JwtPayloadKey, claims)
		c.Set(IdentityKey, Identity{
			Subjects: claims.Roles,
			Domain:   claims.Domain,
		})
		c.Next()
	}
}
