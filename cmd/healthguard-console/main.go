package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"healthguard-console/internal/config"
	"healthguard-console/internal/logger"
	"healthguard-console/internal/service"
	"healthguard-console/internal/vitals"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Console: cfg.Log.Console,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 创建监护服务
	monitor := service.NewMonitor(cfg, log)
	defer monitor.Stop()

	// 4. 登录（凭证来自配置；登录失败是用户可见的阻塞性错误）
	if cfg.Auth.Username == "" || cfg.Auth.Password == "" {
		log.Fatal("HG_USERNAME and HG_PASSWORD are required")
	}
	ctx := context.Background()
	user, err := monitor.Login(ctx, cfg.Auth.Username, cfg.Auth.Password)
	if err != nil {
		log.Fatal("Login failed",
			zap.Error(err),
		)
	}
	log.Info("Logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)

	// 5. 订阅派生状态，输出到日志（展示层边界）
	unsubscribe := monitor.Subscribe(func(u service.Update) {
		logUpdate(log, u)
	})
	defer unsubscribe()

	// 6. 启动同步核心
	monitor.Start()

	// 7. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Received signal, shutting down",
		zap.String("signal", sig.String()),
	)
}

// logUpdate 将状态更新写入日志
func logUpdate(log *zap.Logger, u service.Update) {
	switch u.Kind {
	case service.UpdateReading:
		fields := []zap.Field{
			zap.Time("timestamp", u.Reading.Timestamp),
		}
		if u.Reading.HeartRate != nil {
			fields = append(fields, zap.Float64("heart_rate", *u.Reading.HeartRate))
		}
		if u.Reading.SpO2 != nil {
			fields = append(fields, zap.Float64("spo2", *u.Reading.SpO2))
		}
		if u.Snapshot != nil && u.Snapshot.AlertCount() > 0 {
			fields = append(fields, zap.Int("alert_count", u.Snapshot.AlertCount()))
		}
		log.Info("Latest vital reading", fields...)

	case service.UpdateHistory:
		log.Debug("Stream history updated",
			zap.Int("buffer_len", len(u.History)),
		)

	case service.UpdateStatus:
		log.Info("System status",
			zap.String("device_id", u.Status.DeviceID),
			zap.String("uptime", vitals.FormatUptime(u.Status.UptimeSeconds)),
			zap.Int("unsynced_readings", u.Status.UnsyncedReadings),
			zap.String("sensor_status", u.Status.SensorStatus),
			zap.Bool("mock_mode", u.Status.MockMode),
		)

	case service.UpdatePatient:
		log.Info("Patient profile",
			zap.String("first_name", u.Patient.FirstName),
			zap.String("last_name", u.Patient.LastName),
		)

	case service.UpdateSessionExpired:
		log.Warn("Logged out: session expired")
	}
}
