package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rushteam/placekit/observability"
	"github.com/rushteam/placekit/service"
)

// MaxBodyBytes /predict 请求体上限
const MaxBodyBytes = 1 << 20

// Config HTTP 服务配置
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// Server 对外提供 /predict、/branches、/health、/metrics
type Server struct {
	cfg     Config
	svc     *service.PredictionService
	metrics *observability.Metrics
	logger  *zap.Logger
	engine  *gin.Engine
}

// New 创建服务并注册路由
func New(cfg Config, svc *service.PredictionService, metrics *observability.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":5001"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}

	s := &Server{
		cfg:     cfg,
		svc:     svc,
		metrics: metrics,
		logger:  logger,
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(logger),
		Metrics(metrics),
		CORS(cfg.CORSOrigins),
	)
	r.POST("/predict", BodyLimit(MaxBodyBytes), s.predict)
	r.GET("/branches", s.branches)
	r.GET("/health", s.health)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	s.engine = r
	return s
}

// Handler 返回 HTTP handler（测试用）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 启动服务，ctx 取消后优雅退出
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
