package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/nimbusemu/nimbus/internal/apigateway"
	"github.com/nimbusemu/nimbus/internal/cloudwatchlogs"
	"github.com/nimbusemu/nimbus/internal/cognito"
	"github.com/nimbusemu/nimbus/internal/config"
	"github.com/nimbusemu/nimbus/internal/dynamodb"
	"github.com/nimbusemu/nimbus/internal/eventbridge"
	"github.com/nimbusemu/nimbus/internal/firehose"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/nimbusemu/nimbus/internal/kinesis"
	"github.com/nimbusemu/nimbus/internal/kms"
	"github.com/nimbusemu/nimbus/internal/lambda"
	"github.com/nimbusemu/nimbus/internal/memorydb"
	"github.com/nimbusemu/nimbus/internal/metricsink"
	"github.com/nimbusemu/nimbus/internal/s3"
	"github.com/nimbusemu/nimbus/internal/secretsmanager"
	"github.com/nimbusemu/nimbus/internal/ses"
	"github.com/nimbusemu/nimbus/internal/sns"
	"github.com/nimbusemu/nimbus/internal/sqs"
	"github.com/nimbusemu/nimbus/internal/ssm"
	"github.com/nimbusemu/nimbus/internal/stepfunctions"
	"github.com/nimbusemu/nimbus/internal/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start nimbus, an in-memory emulator for a family of AWS data-plane services",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNimbus(cmd)
	},
}

func runNimbus(cmd *cobra.Command) error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	log.Info().Str("region", cfg.Region).Str("account_id", cfg.AccountID).Msg("starting nimbus")

	id := identity.New(cfg.AccountID, cfg.Region)
	clock := identity.NewClock()

	services := buildServices(cfg, id, clock)
	printBanner(services)

	if cfg.Metrics.Enabled {
		go runMetricsServer(cfg)
	}

	return transport.NewOrchestrator(services...).Run(cmd.Context())
}

// buildServices constructs every emulated service's registry and
// dispatch handler, mounts it on its own transport.Service, and drops
// any service whose configured port is 0 (spec.md §2 — one process,
// many ports, each independently disableable).
func buildServices(cfg *config.Config, id identity.Identity, clock *identity.Clock) []*transport.Service {
	var services []*transport.Service

	add := func(name string, port int, mount func(*transport.Service)) {
		if port == 0 {
			log.Info().Str("service", name).Msg("service disabled (port 0)")
			return
		}
		svc := transport.NewService(name, port)
		mount(svc)
		services = append(services, svc)
	}

	add("s3", cfg.Ports.S3, func(svc *transport.Service) {
		s3.NewHandler(s3.NewRegistry(id, clock)).Mount(svc.Router)
	})
	add("sqs", cfg.Ports.SQS, func(svc *transport.Service) {
		host := fmt.Sprintf("localhost:%d", cfg.Ports.SQS)
		sqs.NewHandler(sqs.NewRegistry(id, clock, host)).Mount(svc.Router)
	})
	add("sns", cfg.Ports.SNS, func(svc *transport.Service) {
		sns.NewHandler(sns.NewRegistry(id, clock)).Mount(svc.Router)
	})
	add("dynamodb", cfg.Ports.DynamoDB, func(svc *transport.Service) {
		dynamodb.NewHandler(dynamodb.NewRegistry(id)).Mount(svc.Router)
	})
	add("lambda", cfg.Ports.Lambda, func(svc *transport.Service) {
		lambda.NewHandler(lambda.NewRegistry(id)).Mount(svc.Router)
	})
	add("firehose", cfg.Ports.Firehose, func(svc *transport.Service) {
		firehose.NewHandler(firehose.NewRegistry(id)).Mount(svc.Router)
	})
	add("memorydb", cfg.Ports.MemoryDB, func(svc *transport.Service) {
		memorydb.NewHandler(memorydb.NewRegistry(id)).Mount(svc.Router)
	})
	add("cognito", cfg.Ports.Cognito, func(svc *transport.Service) {
		cognito.NewHandler(cognito.NewRegistry(id)).Mount(svc.Router)
	})
	add("apigateway", cfg.Ports.APIGateway, func(svc *transport.Service) {
		apigateway.NewHandler(apigateway.NewRegistry(id)).Mount(svc.Router)
	})
	add("kms", cfg.Ports.KMS, func(svc *transport.Service) {
		kms.NewHandler(kms.NewRegistry(id)).Mount(svc.Router)
	})
	add("secretsmanager", cfg.Ports.SecretsManager, func(svc *transport.Service) {
		secretsmanager.NewHandler(secretsmanager.NewRegistry(id)).Mount(svc.Router)
	})
	add("kinesis", cfg.Ports.Kinesis, func(svc *transport.Service) {
		kinesis.NewHandler(kinesis.NewRegistry(id)).Mount(svc.Router)
	})
	add("eventbridge", cfg.Ports.EventBridge, func(svc *transport.Service) {
		eventbridge.NewHandler(eventbridge.NewRegistry(id)).Mount(svc.Router)
	})
	add("stepfunctions", cfg.Ports.StepFunctions, func(svc *transport.Service) {
		stepfunctions.NewHandler(stepfunctions.NewRegistry(id)).Mount(svc.Router)
	})
	add("ssm", cfg.Ports.SSM, func(svc *transport.Service) {
		ssm.NewHandler(ssm.NewRegistry()).Mount(svc.Router)
	})
	add("cloudwatchlogs", cfg.Ports.CloudWatchLogs, func(svc *transport.Service) {
		cloudwatchlogs.NewHandler(cloudwatchlogs.NewRegistry(id)).Mount(svc.Router)
	})
	add("ses", cfg.Ports.SES, func(svc *transport.Service) {
		ses.NewHandler(ses.NewRegistry()).Mount(svc.Router)
	})

	return services
}

// printBanner prints the enabled services and their ports to stdout in
// color, independent of the structured zerolog output, for a human
// glancing at a terminal to see what came up.
func printBanner(services []*transport.Service) {
	bold := color.New(color.FgGreen, color.Bold)
	bold.Println("nimbus is up")
	for _, svc := range services {
		fmt.Printf("  %s  :%d\n", color.CyanString("%-15s", svc.Name), svc.Port)
	}
}

func runMetricsServer(cfg *config.Config) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsink.Handler())

	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	log.Info().Str("address", addr).Msg("metrics server started")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
