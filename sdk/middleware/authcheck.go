package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soybean-go/admin-core/sdk/pkg/logger"
	"github.com/soybean-go/admin-core/sdk/pkg/response"
)

// IdentityKey 存放上游认证阶段解析出的调用者身份的 gin 上下文键
const IdentityKey = "ADMIN_CORE_IDENTITY"

// Identity 是认证层在本中间件之前挂到请求上的调用者身份：
// 判定主体列表（通常是角色编码）和可选的域。
type Identity struct {
	Subjects []string
	Domain   string
}

// PolicyEnforcer 是授权中间件对判定引擎的最小依赖。
type PolicyEnforcer interface {
	Enforce(subject, object, action string) (bool, error)
	EnforceWithDomain(subject, domain, object, action string) (bool, error)
}

// 对外响应只给笼统说明，不泄露命中或未命中的规则；具体原因进日志。
const (
	msgNoIdentity = "No authentication token was provided. Please ensure your request includes a valid token."
	msgNoSubjects = "No token provided or invalid token type"
	msgForbidden  = "You do not have the necessary permissions to access this resource. Please contact support if you believe this is an error."
	msgEnforceErr = "We encountered an unexpected error while processing your request. Our team has been notified, and we are investigating the issue."
)

// AuthCheck 授权中间件：从请求身份逐个主体调用判定引擎。
//
// 每个请求走一个小状态机：
//   - 无身份或主体列表为空 → 401，不调用引擎；
//   - 任一主体判定通过 → 放行，剩余主体不再检查；
//   - 判定本身出错 → 502 并立即停止（fail-closed，不再检查后续主体）；
//   - 全部主体判定为否 → 403。
//
// domainScoped 在构造时固定四列或三列调用约定，部署内不混用。
func AuthCheck(enforcer PolicyEnforcer, domainScoped bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(IdentityKey)
		if !exists {
			enforcementDecisions.WithLabelValues("unauthorized").Inc()
			response.Error(c, http.StatusUnauthorized, nil, msgNoIdentity)
			return
		}
		identity, ok := v.(Identity)
		if !ok || len(identity.Subjects) == 0 {
			enforcementDecisions.WithLabelValues("unauthorized").Inc()
			response.Error(c, http.StatusUnauthorized, nil, msgNoSubjects)
			return
		}

		object := c.Request.URL.Path
		action := c.Request.Method

		authorized := false
		for _, subject := range identity.Subjects {
			var allowed bool
			var err error
			if domainScoped {
				allowed, err = enforcer.EnforceWithDomain(subject, identity.Domain, object, action)
			} else {
				allowed, err = enforcer.Enforce(subject, object, action)
			}
			if err != nil {
				logger.GetRequestLogger(c).Error("策略判定失败",
					zap.String("subject", subject),
					zap.String("domain", identity.Domain),
					zap.String("object", object),
					zap.String("action", action),
					zap.Error(err))
				enforcementDecisions.WithLabelValues("error").Inc()
				response.Error(c, http.StatusBadGateway, nil, msgEnforceErr)
				return
			}
			if allowed {
				authorized = true
				break
			}
		}

		if !authorized {
			enforcementDecisions.WithLabelValues("denied").Inc()
			response.Error(c, http.StatusForbidden, nil, msgForbidden)
			return
		}

		enforcementDecisions.WithLabelValues("allowed").Inc()
		c.Next()
	}
}
