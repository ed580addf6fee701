package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"frontdesk-workers/internal/common/aws"
	"frontdesk-workers/internal/common/camunda"
	"frontdesk-workers/internal/common/config"
	"frontdesk-workers/internal/common/database"
	"frontdesk-workers/internal/common/llm"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/common/observability"
	"frontdesk-workers/internal/directory"
	"frontdesk-workers/internal/intent"
	"frontdesk-workers/internal/prompts"
	"frontdesk-workers/internal/session"
	"frontdesk-workers/internal/tools"
	"frontdesk-workers/internal/workflow"

	ci "frontdesk-workers/internal/workers/frontdesk/classify-intent"
	sp "frontdesk-workers/internal/workers/frontdesk/specialist"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	configPath := pflag.String("config", "", "path to a config file (default: configs/config.yaml)")
	processID := pflag.String("process-id", "", "BPMN process id (overrides camunda.process_id)")
	deployOnly := pflag.Bool("deploy-only", false, "deploy the front-desk process and exit")
	printBPMN := pflag.Bool("print-bpmn", false, "write the rendered BPMN to stdout and exit")
	pflag.Parse()

	if *printBPMN {
		id := *processID
		if id == "" {
			id = "frontdesk-turn"
		}
		out, err := workflow.FrontDesk(id).BPMN()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		_, _ = os.Stdout.Write(out)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if *processID != "" {
		cfg.Camunda.ProcessID = *processID
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting front desk...",
		zap.String("processId", cfg.Camunda.ProcessID),
		zap.String("llmProvider", cfg.LLM.Provider),
		zap.String("classifierMode", cfg.Classifier.Mode),
	)

	ctx := context.Background()

	obs, err := newObservability(cfg)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown()

	// --- Zeebe ---
	zeebe, err := camunda.NewClient(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	graph := workflow.FrontDesk(cfg.Camunda.ProcessID)
	if cfg.Camunda.DeployOnStart || *deployOnly {
		deployment, err := workflow.Deploy(ctx, zeebe.Zeebe(), graph)
		if err != nil {
			zapLog.Fatal("process deployment failed", zap.Error(err))
		}
		zapLog.Info("Process deployed",
			zap.String("bpmnProcessId", deployment.BPMNProcessID),
			zap.Int32("version", deployment.Version),
			zap.Int64("processDefinitionKey", deployment.ProcessDefinitionKey),
		)
	}
	if *deployOnly {
		return
	}

	// --- Redis ---
	redis, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("invalid redis configuration", zap.Error(err))
	}
	defer redis.Close()
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	// --- PostgreSQL (directory source) ---
	var db *sql.DB
	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		db = pg.DB
		zapLog.Info("PostgreSQL connected successfully")
	}

	dir, err := directory.Load(ctx, cfg.Directory, db)
	if err != nil {
		zapLog.Fatal("directory load failed", zap.Error(err))
	}
	log.Info("directory loaded", dir.Stats())

	// --- Tools ---
	communicator, err := newCommunicator(ctx, cfg, log, zapLog)
	if err != nil {
		zapLog.Fatal("communication tools init failed", zap.Error(err))
	}
	registry, err := tools.NewStandardRegistry(tools.NewLookup(dir), communicator, log)
	if err != nil {
		zapLog.Fatal("tool registry init failed", zap.Error(err))
	}

	// --- LLM, classifier, prompts ---
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		zapLog.Fatal("llm client init failed", zap.Error(err))
	}

	var classifier intent.Classifier
	switch cfg.Classifier.Mode {
	case config.ClassifierModeKeyword:
		classifier = intent.NewKeywordClassifier(dir)
	default:
		classifier = intent.NewLLMClassifier(client, cfg.LLM.ClassifierModel)
	}

	book, err := prompts.NewBook(prompts.Params{
		CompanyName:   cfg.FrontDesk.CompanyName,
		AssistantName: cfg.FrontDesk.AssistantName,
		Greeting:      cfg.FrontDesk.Greeting,
		CareersEmail:  cfg.FrontDesk.CareersEmail,
		Routing: prompts.AdminRouting{
			Finance:    cfg.FrontDesk.AdminRouting.Finance,
			Compliance: cfg.FrontDesk.AdminRouting.Compliance,
			General:    cfg.FrontDesk.AdminRouting.General,
		},
	})
	if err != nil {
		zapLog.Fatal("prompt book init failed", zap.Error(err))
	}

	// --- Workers ---
	workers := camunda.NewRegistry(zeebe.Zeebe(), obs, log)
	defer workers.Close()

	startWorker(workers, cfg, ci.TaskType, ci.NewHandler(ci.LoadConfig(cfg), classifier, log), zapLog)
	for _, h := range intent.Handlers() {
		handler, err := sp.NewHandler(h, sp.LoadConfig(cfg, h), client, book, registry, log)
		if err != nil {
			zapLog.Fatal("failed to create specialist handler", zap.String("handler", string(h)), zap.Error(err))
		}
		startWorker(workers, cfg, handler.TaskType(), handler, zapLog)
	}
	zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.TaskTypes()))

	// --- Session channel ---
	store := session.NewRedisStore(
		redis.Client,
		cfg.Database.Redis.KeyPrefix,
		config.GetDuration(cfg.Session.HistoryTTL),
		cfg.Session.MaxHistory,
	)
	executor := workflow.NewTurnExecutor(
		zeebe.Zeebe(),
		cfg.Camunda.ProcessID,
		config.GetDuration(cfg.Session.TurnTimeout),
		obs.Tracer(),
		log,
	)
	runtime := session.NewRuntime(store, executor, cfg.FrontDesk.Greeting, log,
		session.WithIdleTimeout(config.GetDuration(cfg.Session.HistoryTTL)),
	)
	checks := map[string]session.ReadinessCheck{
		"zeebe": zeebe.HealthCheck,
		"redis": store.Ping,
	}

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           session.NewServer(runtime, checks, cfg.Server.AllowedOrigins, log).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("Session server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Session server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping session server", zap.Error(err))
	}
	workers.Close()

	zapLog.Info("Front desk stopped gracefully")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newObservability(cfg *config.Config) (*observability.Observability, error) {
	opts := observability.Options{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
	}
	if cfg.Observability.Jaeger.Enabled {
		exporter, err := observability.NewJaegerExporter(cfg.Observability.Jaeger.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("jaeger exporter: %w", err)
		}
		opts.SpanExporter = exporter
	}
	return observability.New(opts)
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			BaseURL:       cfg.LLM.BaseURL,
			APIKey:        cfg.LLM.APIKey,
			Model:         cfg.LLM.Model,
			Temperature:   cfg.LLM.Temperature,
			MaxTokens:     cfg.LLM.MaxTokens,
			MaxToolRounds: cfg.LLM.MaxToolRounds,
			Timeout:       config.GetDuration(cfg.LLM.Timeout),
		})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return client, nil
	default:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:       cfg.LLM.BaseURL,
			APIKey:        cfg.LLM.APIKey,
			Model:         cfg.LLM.Model,
			Temperature:   cfg.LLM.Temperature,
			MaxTokens:     cfg.LLM.MaxTokens,
			MaxToolRounds: cfg.LLM.MaxToolRounds,
			Timeout:       config.GetDuration(cfg.LLM.Timeout),
		}), nil
	}
}

// newCommunicator wires the email and caller-info tools to whichever delivery backends are enabled.
// Without SES, emails are only logged.
func newCommunicator(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (*tools.Communicator, error) {
	var mailer tools.Mailer = tools.NewLogMailer(log)
	var opts []tools.CommunicatorOption

	if cfg.Integrations.AWS.SES.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			return nil, err
		}
		mailer = tools.NewSESMailer(client, cfg.Integrations.AWS.SES.FromEmail, log)
		zapLog.Info("SES mailer enabled", zap.String("from", cfg.Integrations.AWS.SES.FromEmail))
	}

	if cfg.Integrations.AWS.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tools.WithNotifier(tools.NewSNSCallerNotifier(client, cfg.Integrations.AWS.SNS.TopicARN)))
		zapLog.Info("SNS caller notifications enabled")
	}

	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		index := cfg.Database.Elasticsearch.EmailIndex
		if err := es.EnsureIndex(ctx, index, tools.EmailIndexMapping); err != nil {
			return nil, err
		}
		opts = append(opts, tools.WithAuditor(tools.NewElasticsearchAudit(es.Client, index)))
		zapLog.Info("Elasticsearch email audit enabled", zap.String("index", index))
	}

	return tools.NewCommunicator(mailer, log, opts...), nil
}

func startWorker(workers *camunda.Registry, cfg *config.Config, taskType string, handler camunda.JobHandler, log *zap.Logger) {
	if !config.IsWorkerEnabled(cfg, taskType) {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}
	wcfg := config.GetWorkerConfig(cfg, taskType)
	if err := workers.Start(camunda.WorkerOptions{
		TaskType:      taskType,
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       config.GetDuration(wcfg.Timeout),
	}, handler); err != nil {
		log.Fatal("failed to start worker", zap.String("taskType", taskType), zap.Error(err))
	}
}
