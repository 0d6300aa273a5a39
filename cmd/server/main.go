package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/app/admin/router"
	"github.com/soybean-go/admin-core/sdk/config"
	"github.com/soybean-go/admin-core/sdk/pkg/authz"
	"github.com/soybean-go/admin-core/sdk/pkg/authz/gormadapter"
	"github.com/soybean-go/admin-core/sdk/pkg/events"
	"github.com/soybean-go/admin-core/sdk/pkg/logger"
	"github.com/soybean-go/admin-core/sdk/runtime"
)

var configYml = flag.String("c", "config/settings.yml", "配置文件路径")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Setup(*configYml); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	logger.Setup(config.LoggerConfig)
	log := logger.Logger

	db, err := openDatabase(log)
	if err != nil {
		return err
	}

	// NewStore 先建出策略表，随后的迁移版本才能写入内置策略
	store, err := gormadapter.NewStore(db)
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	opts := []authz.Option{authz.WithLogger(log)}
	if !config.AuthzConfig.DomainScoped {
		opts = append(opts, authz.WithoutDomains())
	}
	enforcer, err := authz.NewEnforcer(store, opts...)
	if err != nil {
		return fmt.Errorf("策略加载失败: %w", err)
	}

	publisher := events.NewPublisher(256, log)
	publisher.Subscribe(func(ev events.Event) {
		log.Info("audit event",
			zap.String("topic", ev.Topic),
			zap.String("eventId", ev.ID),
			zap.Any("payload", ev.Payload))
	})
	defer publisher.Close()

	gin.SetMode(config.ApplicationConfig.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.InitRouter(engine, db, enforcer, publisher)

	app := runtime.NewApplication()
	app.SetDB(db)
	app.SetEnforcer(enforcer)
	app.SetLogger(log)
	app.SetEngine(engine)
	app.SetEvents(publisher)

	if expr := config.AuthzConfig.ReloadCron; expr != "" {
		if err := app.StartPolicyReload(expr); err != nil {
			return fmt.Errorf("策略定时重载启动失败: %w", err)
		}
		defer app.StopPolicyReload()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.ApplicationConfig.Host, config.ApplicationConfig.Port),
		Handler: engine,
	}

	go func() {
		log.Info("server starting",
			zap.String("name", config.ApplicationConfig.Name),
			zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func openDatabase(log *zap.Logger) (*gorm.DB, error) {
	cfg := config.DatabaseConfig
	db, err := gorm.Open(mysql.Open(cfg.Source), &gorm.Config{
		Logger: logger.NewGormLogger(log, 2),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}
	if cfg.ConnMaxLifeTime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeTime) * time.Second)
	}
	return db, nil
}
