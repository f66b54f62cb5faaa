package bootstrap

import (
	"github.com/job-geocoder/app/config"
	"go.uber.org/zap"
)

// NewLogger khởi tạo structured logger: production config khi app.env=production
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	return zapCfg.Build()
}
