package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"couple_kitchen/config"
	"couple_kitchen/db"
	"couple_kitchen/handlers"
	"couple_kitchen/logger"
	"couple_kitchen/repository"
	"couple_kitchen/scheduler"
	"couple_kitchen/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("服务退出: %v", err)
	}
}

// run 按顺序初始化各组件，返回时所有 defer 的资源都已释放
func run() error {
	cfg := config.Load()

	// 初始化日志系统
	if err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}
	logger.Info("日志系统初始化成功", "level", cfg.Log.Level, "format", cfg.Log.Format, "output", cfg.Log.Output)

	if err := db.InitMySQLWithConfig(cfg); err != nil {
		return fmt.Errorf("初始化MySQL失败: %w", err)
	}
	defer db.Close()
	logger.Info("MySQL连接成功",
		"max_open_conns", cfg.DB.MaxOpenConns,
		"max_idle_conns", cfg.DB.MaxIdleConns,
		"conn_max_lifetime", cfg.DB.ConnMaxLifetime)

	if cfg.DB.AutoMigrate {
		if err := db.RunMigrations(db.DB); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consolidator, err := services.NewConsolidationClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("初始化食材合并服务失败 (provider=%s): %w", cfg.Consolidation.Provider, err)
	}
	if closer, ok := consolidator.(io.Closer); ok {
		defer closer.Close()
	}
	logger.Info("食材合并服务已就绪", "provider", cfg.Consolidation.Provider)

	repo := repository.NewShoppingRepo(db.DB)
	handler := handlers.NewShoppingHandler(
		services.NewShoppingService(repo),
		services.NewConsolidationService(consolidator, repo),
	)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handlers.RegisterRoutes(r, cfg, handler)

	// start cron
	sched, err := scheduler.Start(cfg, repo)
	if err != nil {
		return fmt.Errorf("启动调度器失败: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", cfg.Server.Addr, err)
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("服务器启动", "address", serverAddr)
	logger.Info("Swagger文档可访问", "url", fmt.Sprintf("http://%s/swagger/index.html", serverAddr))

	srv := &http.Server{Handler: r}
	return serve(ctx, srv, ln, 10*time.Second, func() {
		if sched != nil {
			<-sched.Stop().Done()
		}
	})
}

// serve 在 ln 上提供服务，ctx 结束后先执行 beforeShutdown，再等待进行中的请求处理完才返回
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, beforeShutdown func()) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Info("收到退出信号，正在关闭服务")
		if beforeShutdown != nil {
			beforeShutdown()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("服务器异常退出: %w", err)
	}
	if err := <-done; err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	logger.Info("服务已关闭")
	return nil
}
