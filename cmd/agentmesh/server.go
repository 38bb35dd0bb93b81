package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackhole-core/agentmesh/api/handlers"
	"github.com/blackhole-core/agentmesh/config"
	"github.com/blackhole-core/agentmesh/connector"
	"github.com/blackhole-core/agentmesh/internal/cache"
	"github.com/blackhole-core/agentmesh/internal/database"
	"github.com/blackhole-core/agentmesh/internal/metrics"
	"github.com/blackhole-core/agentmesh/internal/server"
	"github.com/blackhole-core/agentmesh/internal/telemetry"
	"github.com/blackhole-core/agentmesh/orchestrator"
	"github.com/blackhole-core/agentmesh/registry"
	"github.com/blackhole-core/agentmesh/router"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// fileStoreFallbackPath 是数据库不可用时的 JSON 配置文件路径
const fileStoreFallbackPath = "agent_configs.json"

// Server 是 AgentMesh 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	// 核心组件
	db            *gorm.DB
	registry      *registry.CapabilityRegistry
	router        *router.Router
	parser        *router.CommandParser
	connector     *connector.UniversalConnector
	orchestrator  *orchestrator.Orchestrator
	responseCache *cache.ResponseCache

	// 指标与遥测
	metricsCollector *metrics.Collector
	otelProviders    *telemetry.Providers

	// Rate limiter 生命周期管理
	rateLimiterCancel context.CancelFunc
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger, providers *telemetry.Providers) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		otelProviders: providers,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("agentmesh", s.logger)

	if err := s.initComponents(); err != nil {
		return fmt.Errorf("failed to init components: %w", err)
	}

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
	)

	return nil
}

// =============================================================================
// 🔧 初始化
// =============================================================================

// initComponents 按依赖顺序组装核心组件：存储 → 注册表 → 路由 → 连接器 → 编排器
func (s *Server) initComponents() error {
	ctx := context.Background()

	// 数据库与注册表存储。driver=file 直接用 JSON 文件；数据库打不开时
	// 也降级到 JSON 文件，保证配置始终有持久化。
	var store registry.Store
	if s.cfg.Database.Driver == "file" {
		store = registry.NewFileStore(s.cfg.Database.Name)
	} else if db, err := database.Open(s.cfg.Database, s.logger); err != nil {
		s.logger.Warn("database not available, falling back to file-backed agent configs",
			zap.String("path", fileStoreFallbackPath),
			zap.Error(err),
		)
		store = registry.NewFileStore(fileStoreFallbackPath)
	} else {
		s.db = db
		gormStore, storeErr := registry.NewGormStore(db)
		if storeErr != nil {
			return fmt.Errorf("create agent config store: %w", storeErr)
		}
		store = gormStore
	}

	s.registry = registry.New(store, s.logger)
	if err := s.registry.LoadFromStore(ctx); err != nil {
		s.logger.Warn("failed to load stored agent configs", zap.Error(err))
	}

	// 路由与命令解析
	s.router = router.New(nil, s.logger)
	s.parser = router.NewCommandParser(
		router.DefaultRules(),
		s.cfg.Router.DefaultAgent,
		s.cfg.Router.DefaultIntent,
		s.logger,
	)

	// 通用连接器
	s.connector = connector.New(s.router, connector.DefaultRefTable, connector.Config{
		HealthCheckTimeout: s.cfg.Connector.HealthCheckTimeout,
		InvokeTimeout:      s.cfg.Connector.InvokeTimeout,
	}, s.logger)

	// 重连已存储且启用的智能体
	for _, cfg := range s.registry.ListEnabled() {
		if ok := s.connector.Register(ctx, cfg); !ok {
			s.logger.Warn("stored agent failed to reconnect", zap.String("agent_id", cfg.ID))
		}
	}
	handlers.SyncConnectedAgents(s.metricsCollector, s.connector)

	// 编排器
	s.orchestrator = orchestrator.New(s.connector, s.router, s.parser, orchestrator.Config{
		DependencyTimeout: s.cfg.Orchestrator.DependencyTimeout,
		HistoryLimit:      s.cfg.Orchestrator.HistoryLimit,
	}, s.logger)
	if s.metricsCollector != nil {
		s.orchestrator.SetMetrics(s.metricsCollector)
	}

	// 结果缓存（可选）
	if s.cfg.Redis.Enabled {
		responseCache, cacheErr := cache.New(cache.Config{
			Addr:     s.cfg.Redis.Addr,
			Password: s.cfg.Redis.Password,
			DB:       s.cfg.Redis.DB,
			PoolSize: s.cfg.Redis.PoolSize,
			TTL:      s.cfg.Redis.TTL,
		}, s.logger)
		if cacheErr != nil {
			s.logger.Warn("redis not available, workflow caching disabled", zap.Error(cacheErr))
		} else {
			s.responseCache = responseCache
		}
	}

	s.logger.Info("Components initialized",
		zap.Bool("database", s.db != nil),
		zap.Bool("cache", s.responseCache != nil),
		zap.Int("stored_agents", len(s.registry.List())),
	)
	return nil
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	var dbPinger, cachePinger handlers.Pinger
	if s.db != nil {
		dbPinger = gormPinger{db: s.db}
	}
	if s.responseCache != nil {
		cachePinger = s.responseCache
	}

	handlers.NewHealthHandler(s.connector, dbPinger, cachePinger, s.logger).RegisterRoutes(mux)
	handlers.NewAgentHandler(s.registry, s.connector, s.metricsCollector, s.logger).RegisterRoutes(mux)
	handlers.NewCommandHandler(s.parser, s.router, s.connector, s.metricsCollector, s.logger).RegisterRoutes(mux)

	var workflowCache handlers.WorkflowCache
	if s.responseCache != nil {
		workflowCache = s.responseCache
	}
	handlers.NewCollaborateHandler(s.orchestrator, workflowCache, s.metricsCollector, s.logger).RegisterRoutes(mux)

	// 版本信息端点
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteSuccess(w, map[string]string{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// 中间件链
	skipAuthPaths := []string{"/health", "/ping", "/version", "/metrics"}
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
	}
	if s.cfg.Telemetry.Enabled {
		middlewares = append(middlewares, OTelTracing())
	}
	if s.cfg.Auth.Enabled {
		middlewares = append(middlewares,
			RateLimiter(rateLimiterCtx, s.cfg.Auth.RateLimitRPS, s.cfg.Auth.RateLimitBurst, s.logger),
		)
		switch {
		case s.cfg.Auth.APIKey != "":
			middlewares = append(middlewares, APIKeyAuth(s.cfg.Auth.APIKey, skipAuthPaths, s.logger))
		case s.cfg.Auth.JWTSecret != "":
			middlewares = append(middlewares, JWTAuth(s.cfg.Auth.JWTSecret, skipAuthPaths, s.logger))
		}
	}
	handler := Chain(mux, middlewares...)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// gormPinger adapts a gorm handle to the health handler's Pinger.
type gormPinger struct {
	db *gorm.DB
}

func (p gormPinger) Ping(ctx context.Context) error {
	return database.Ping(ctx, p.db)
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号并优雅关闭
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown 优雅关闭所有服务
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	// 断开所有智能体连接
	if s.connector != nil {
		for _, status := range s.connector.ConnectedAgents() {
			s.connector.Disconnect(status.ID)
		}
	}

	if s.responseCache != nil {
		if err := s.responseCache.Close(); err != nil {
			s.logger.Error("Cache shutdown error", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error("Database shutdown error", zap.Error(err))
		}
	}

	if s.otelProviders != nil {
		if err := s.otelProviders.Shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
