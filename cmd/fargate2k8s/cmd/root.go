package cmd

import (
	goflag "flag"
	"fmt"

	"github.com/patrg444/Cygni/pkg/config"
	"github.com/patrg444/Cygni/pkg/manifest"
	"github.com/patrg444/Cygni/pkg/migration"
	"github.com/patrg444/Cygni/pkg/stats"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "fargate2k8s <task-def.json> <service.json>",
	Short: "Convert AWS Fargate task definitions to Kubernetes manifests",
	Long: `fargate2k8s converts an ECS/Fargate task definition and its service
definition into Kubernetes manifests: a Deployment, a Service, an optional
ALB Ingress, an optional IRSA ServiceAccount and a HorizontalPodAutoscaler.

Each manifest is written to <output-dir>/<app>-<kind>.yaml, together with
<app>-all.yaml holding every manifest, ready for kubectl apply.`,
	Example:       "  fargate2k8s task-def-api.json service-api.json",
	Args:          exactArgs(2),
	SilenceErrors: true,
	RunE:          runConvert,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Optional config file (YAML or JSON)")
	rootCmd.PersistentFlags().String(config.KeyNamespace, "", "Namespace stamped on every manifest")

	rootCmd.Flags().StringP(config.KeyOutputDir, "o", manifest.DefaultOutputDir, "Directory receiving the manifests")
	rootCmd.Flags().Bool(config.KeyStdout, false, "Print the combined manifest instead of writing files")
	rootCmd.Flags().String(config.KeyMetricsTextfile, "", "Write Prometheus metrics to this file after the run")
}

// exactArgs rejects any positional argument count other than n, printing usage
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("expected %d arguments, got %d", n, len(args))
		}
		return nil
	}
}

// loadConfig merges flags, FARGATE2K8S_* variables and the config file
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return config.Load(v)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	runner := migration.NewRunner(afero.NewOsFs(), cmd.OutOrStdout(), stats.NewMetricsRecorder(), cfg)
	_, runErr := runner.Run(args[0], args[1])

	if cfg.MetricsTextfile != "" {
		if err := runner.Metrics().WriteTextfile(cfg.MetricsTextfile); err != nil {
			klog.ErrorS(err, "Failed to write metrics", "path", cfg.MetricsTextfile)
		}
	}
	return runErr
}
