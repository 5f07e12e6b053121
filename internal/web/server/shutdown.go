package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Shutdown runs the registered hooks then drains the HTTP server, all within
// the configured shutdown timeout. Hook failures are logged and do not stop
// the remaining hooks.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	s.mu.Lock()
	hooks := make([]ShutdownHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	s.logger.Info("initiating graceful shutdown",
		zap.Duration("timeout", s.config.ShutdownTimeout),
		zap.Int("hooks", len(hooks)),
	)
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			s.logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("server shutdown completed")
	return nil
}
