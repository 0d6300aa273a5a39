package runtime

import (
	"net/http"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/sdk/pkg/authz"
	"github.com/soybean-go/admin-core/sdk/pkg/events"
)

// Application 持有进程级资源的显式句柄：数据库连接、授权引擎、日志器、
// 路由引擎和事件通道。启动时构造一次，按需传给中间件和服务，
// 不做隐式的全局单例查找。
type Application struct {
	mux      sync.RWMutex
	db       *gorm.DB
	enforcer *authz.Enforcer
	logger   *zap.Logger
	engine   http.Handler
	events   *events.Publisher
	crontab  *cron.Cron
}

func NewApplication() *Application {
	return &Application{}
}

func (e *Application) SetDB(db *gorm.DB) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.db = db
}

func (e *Application) GetDB() *gorm.DB {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.db
}

func (e *Application) SetEnforcer(enforcer *authz.Enforcer) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.enforcer = enforcer
}

func (e *Application) GetEnforcer() *authz.Enforcer {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.enforcer
}

func (e *Application) SetLogger(l *zap.Logger) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.logger = l
}

func (e *Application) GetLogger() *zap.Logger {
	e.mux.RLock()
	defer e.mux.RUnlock()
	if e.logger == nil {
		return zap.NewNop()
	}
	return e.logger
}

func (e *Application) SetEngine(engine http.Handler) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.engine = engine
}

func (e *Application) GetEngine() http.Handler {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.engine
}

func (e *Application) SetEvents(p *events.Publisher) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.events = p
}

func (e *Application) GetEvents() *events.Publisher {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.events
}

// StartPolicyReload 按 cron 表达式定时全量重载策略。这是内存与存储出现
// 分歧后的兜底恢复路径。表达式为空时不启动。
func (e *Application) StartPolicyReload(expr string) error {
	if expr == "" {
		return nil
	}

	e.mux.Lock()
	defer e.mux.Unlock()

	e.crontab = cron.New()
	_, err := e.crontab.AddFunc(expr, func() {
		enforcer := e.GetEnforcer()
		if enforcer == nil {
			return
		}
		if err := enforcer.LoadPolicy(); err != nil {
			e.GetLogger().Error("定时重载策略失败", zap.Error(err))
			return
		}
		e.GetLogger().Info("定时重载策略完成")
	})
	if err != nil {
		return err
	}
	e.crontab.Start()
	return nil
}

// StopPolicyReload 停止定时重载并等待在途任务完成。
// 等待时不持锁，在途任务还需要读取 enforcer。
func (e *Application) StopPolicyReload() {
	e.mux.Lock()
	crontab := e.crontab
	e.crontab = nil
	e.mux.Unlock()

	if crontab != nil {
		<-crontab.Stop().Done()
	}
}
