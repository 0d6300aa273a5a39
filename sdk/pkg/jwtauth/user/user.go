package user

import (
	"github.com/gin-gonic/gin"

	"github.com/soybean-go/admin-core/sdk/pkg/jwtauth"
)

// GetUserID 取当前请求用户的ID，未认证时返回空串。
func GetUserID(c *gin.Context) string {
	if claims := jwtauth.ExtractClaims(c); claims != nil {
		return claims.Subject
	}
	return ""
}

func GetUserName(c *gin.Context) string {
	if claims := jwtauth.ExtractClaims(c); claims != nil {
		return claims.Username
	}
	return ""
}

func GetRoles(c *gin.Context) []string {
	if claims := jwtauth.ExtractClaims(c); claims != nil {
		return claims.Roles
	}
	return nil
}

func GetDomain(c *gin.Context) string {
	if claims := jwtauth.ExtractClaims(c); claims != nil {
		return claims.Domain
	}
	return ""
}
