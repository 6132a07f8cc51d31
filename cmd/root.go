package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
	"github.com/giantswarm/mcp-service-objects/internal/k8s"
	"github.com/giantswarm/mcp-service-objects/internal/logging"
)

const (
	appName   = "mcp-service-objects"
	envPrefix = "MCP_SERVICE_OBJECTS"
)

// Configuration keys read through viper.
const (
	keyLabelSelectorKey = "labelSelectorKey"
	keyMaxConcurrency   = "maxConcurrency"
	keyQPS              = "qps"
	keyBurst            = "burst"
	keyTimeout          = "timeout"
	keyClientCacheTTL   = "clientCacheTTL"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// appConfig holds the file and environment configuration of the process.
	appConfig = viper.New()

	// configErr is set by initConfig and reported by the first command run.
	configErr error
)

// rootCmd is the base command. Without a subcommand it runs serve.
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "MCP server for the Kubernetes objects of a service",
	Long: `mcp-service-objects is a Model Context Protocol (MCP) server that lists
the Kubernetes objects belonging to a service across a set of configured
clusters. Objects are matched by label, fetched concurrently per resource
type, and failures are reported per type without failing the whole request.

When run without subcommands, it starts the MCP server (equivalent to 'mcp-service-objects serve').`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		return setupLogging(cmd)
	},
}

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-service-objects version %s\n" .Version}}`)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mcp-service-objects/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newClustersCmd())
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault(keyLabelSelectorKey, fetcher.DefaultLabelSelectorKey)
	v.SetDefault(keyMaxConcurrency, 0)
	v.SetDefault(keyQPS, k8s.DefaultQPSLimit)
	v.SetDefault(keyBurst, k8s.DefaultBurstLimit)
	v.SetDefault(keyTimeout, k8s.DefaultTimeout)
	v.SetDefault(keyClientCacheTTL, k8s.DefaultClientCacheTTL)
}

// initConfig reads the config file and environment. A missing default
// config file is not an error; a missing explicit one is.
func initConfig() {
	configErr = loadConfig(appConfig, cfgFile)
}

func loadConfig(v *viper.Viper, file string) error {
	setConfigDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// setupLogging installs the process logger. The stdio transport owns
// stdout, so logs always go to stderr.
func setupLogging(cmd *cobra.Command) error {
	logger, err := logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if used := appConfig.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", slog.String("path", used))
	}
	return nil
}
