// Command nethost 按 net-host.json 启动 .NET 应用
//
//	nethost                     前台运行（同 nethost run）
//	nethost serve               作为托管服务运行，响应 SIGINT/SIGTERM
//	nethost locate [--all]      打印将要使用的 hostfxr
//	nethost check               校验清单
package main

import (
	"fmt"
	"os"

	"github.com/gocrud/nethost"
	"github.com/gocrud/nethost/config"
	"github.com/gocrud/nethost/host"
	"github.com/gocrud/nethost/logging"
	"github.com/spf13/cobra"
)

var (
	manifestPath string
	dotnetRoot   string
	workDir      string
	settingsFile string
	mode         string
	logLevel     string
	logFormat    string

	settings   nethost.Settings
	cfgBuilder *config.ConfigurationBuilder
	factory    logging.LoggerFactory
	logger     logging.Logger

	// exitCode 命令结束后的进程退出码
	exitCode int

	// hostOptions 追加到每个 Host 上，测试中用于替换 hostfxr
	hostOptions []host.Option
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nethost",
		Short: "Bootstrap a .NET application through hostfxr",
		Long: `nethost reads net-host.json from the working directory, locates hostfxr,
and runs the configured assembly as if "dotnet <assembly> <args...>" had been typed.

Settings are merged from the --settings YAML file, NETHOST_* environment
variables (NETHOST_HOST_DOTNETROOT, NETHOST_LOGGING_LEVEL, ...) and flags.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if factory != nil {
				_ = factory.Close()
			}
		},
		RunE: runForeground,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&manifestPath, "manifest", "", "manifest path (default <workdir>/"+host.DefaultManifestName+")")
	flags.StringVar(&dotnetRoot, "dotnet-root", "", ".NET install root, overrides DOTNET_ROOT")
	flags.StringVar(&workDir, "workdir", "", "working directory (default current directory)")
	flags.StringVar(&settingsFile, "settings", "", "YAML settings file")
	flags.StringVar(&mode, "mode", "", "launch mode: run | component")
	flags.StringVar(&logLevel, "log-level", "", "trace | debug | info | warn | error")
	flags.StringVar(&logFormat, "log-format", "", "text | json")

	root.AddCommand(newRunCmd(), newServeCmd(), newLocateCmd(), newCheckCmd())
	return root
}

// setup 合并设置并创建日志工厂
func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	hostOverrides := map[string]any{}
	logOverrides := map[string]any{}
	for flag, key := range map[string]string{
		"manifest":    "manifest",
		"dotnet-root": "dotnetRoot",
		"workdir":     "workDir",
		"mode":        "mode",
	} {
		if flags.Changed(flag) {
			v, _ := flags.GetString(flag)
			hostOverrides[key] = v
		}
	}
	if flags.Changed("log-level") {
		logOverrides["level"] = logLevel
	}
	if flags.Changed("log-format") {
		logOverrides["format"] = logFormat
	}

	overrides := map[string]any{}
	if len(hostOverrides) > 0 {
		overrides["host"] = hostOverrides
	}
	if len(logOverrides) > 0 {
		overrides["logging"] = logOverrides
	}

	cfgBuilder = nethost.NewConfigurationBuilder(settingsFile, overrides)
	cfg, err := cfgBuilder.Build()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if settings, err = nethost.LoadSettings(cfg); err != nil {
		return err
	}

	if factory, err = logging.NewFactory(settings.Logging, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = factory.CreateLogger("nethost")
	return nil
}

// newHost 根据设置创建 Host
func newHost() (*host.Host, error) {
	opts, err := settings.Host.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, host.WithLogger(factory.CreateLogger("Host")))
	opts = append(opts, hostOptions...)
	return host.New(opts...), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
