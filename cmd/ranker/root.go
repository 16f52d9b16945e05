package main

import (
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/services"
)

const (
	app       = "ranker"
	envPrefix = "RANKER"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "ranker ranks resumes against a job circular with a pretrained category model",
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "an optional config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("model-dir", "", "model artifact directory (default is MODEL_DIR or ./models)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "documents processed in parallel (default is PIPELINE_CONCURRENCY)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	for _, name := range []string{"model-dir", "concurrency", "debug", "json"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			log.Fatalf("binding %s flag: %v", name, err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

// settings returns the service configuration with command line overrides.
func settings() *config.Config {
	cfg := config.Load()
	if dir := viper.GetString("model-dir"); dir != "" {
		cfg.Model.ArtifactDir = dir
	}
	if n := viper.GetInt("concurrency"); n > 0 {
		cfg.Pipeline.Concurrency = n
	}
	return cfg
}

func newLogger() *zap.Logger {
	l, err := logger.NewStderr(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func pipelineConfig(cfg *config.Config) services.PipelineConfig {
	return services.PipelineConfig{
		Concurrency: cfg.Pipeline.Concurrency,
		Timeout:     cfg.Pipeline.RequestTimeout,
		Archive: services.ArchiveLimits{
			MaxEntries:    cfg.Archive.MaxEntries,
			MaxTotalBytes: cfg.Archive.MaxTotalBytes,
			MaxDepth:      cfg.Archive.MaxDepth,
		},
	}
}
