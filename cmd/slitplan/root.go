package main

import (
	"github.com/spf13/cobra"

	"github.com/coilworks/slitplan/internal/config"
	"github.com/coilworks/slitplan/internal/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "slitplan",
	Short: "Slit planning optimization",
	Long: "slitplan assigns customer orders to material coils by solving an exact\n" +
		"width-capacity selection per coil, then sequences each pattern's cuts\n" +
		"ascending to reduce shear blade travel.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// loadConfig loads the configured file or falls back to defaults, and
// applies the log level.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgPath == "" {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
	}
	if err := logger.SetGlobalLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}
