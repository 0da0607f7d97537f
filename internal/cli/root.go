package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rushteam/placekit/logger"
)

const appName = "placekit"

// options 在所有子命令之间共享
type options struct {
	cfgFile string
	v       *viper.Viper
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	o := &options{v: newViper()}

	root := &cobra.Command{
		Use:           appName,
		Short:         "placekit predicts student placement outcomes and suggests improvements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return readConfig(o.v, o.cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "config file (default is placekit.yaml in current directory)")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")
	flags.String("artifacts-dir", "", "directory with model artifacts")

	_ = o.v.BindPFlag("log.debug", flags.Lookup("debug"))
	_ = o.v.BindPFlag("log.json", flags.Lookup("json"))
	_ = o.v.BindPFlag("artifacts.dir", flags.Lookup("artifacts-dir"))

	root.AddCommand(
		newServeCommand(o),
		newPredictCommand(o),
		newArtifactsCommand(o),
		newVersionCommand(),
	)
	return root
}

// Execute 运行根命令
func Execute() error {
	return NewRootCommand().Execute()
}

// setup 解析配置并创建 logger
func (o *options) setup() (*Config, *zap.Logger, error) {
	cfg, err := loadConfig(o.v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, log, nil
}
