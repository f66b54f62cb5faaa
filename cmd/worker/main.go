// Command worker chạy các tác vụ batch: nạp job từ file và geocode thủ công
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/job-geocoder/app/bootstrap"
	"github.com/job-geocoder/app/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Batch worker cho Job Geocoder Service",
	Long: `
worker nạp danh sách job thô (cùng định dạng provider trả về), chuẩn hóa,
geocode theo location key và upsert vào bảng jobs. Cache tọa độ dùng chung
với API server.
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "thư mục chứa app.yaml")
	rootCmd.AddCommand(newImportCmd(), newGeocodeCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withContainer load config, dựng logger và container rồi chạy fn.
// Context bị hủy khi nhận SIGINT/SIGTERM.
func withContainer(parent context.Context, fn func(ctx context.Context, c *bootstrap.Container, logger *zap.Logger) error) error {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	container, err := bootstrap.Build(buildCtx, cfg, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer container.Close()

	return fn(ctx, container, logger)
}
