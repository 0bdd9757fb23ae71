package cmd

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zapedidos/zapedidos/chatbotengine/application"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	"github.com/zapedidos/zapedidos/chatbotengine/repository"
	coreconfig "github.com/zapedidos/zapedidos/core/config"
	coreDB "github.com/zapedidos/zapedidos/core/database"
	domainChatbot "github.com/zapedidos/zapedidos/domains/chatbot"
	domainInstance "github.com/zapedidos/zapedidos/domains/instance"
	"github.com/zapedidos/zapedidos/infrastructure/gateway"
	"github.com/zapedidos/zapedidos/infrastructure/valkey"
	"github.com/zapedidos/zapedidos/pkg/msgworker"
	"github.com/zapedidos/zapedidos/pkg/utils"
	"github.com/zapedidos/zapedidos/usecase"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// Engine and stores
	chatEngine    *application.Engine
	responsePool  *msgworker.Pool
	poolCancel    context.CancelFunc
	valkeyClient  *valkey.Client
	ruleStore     *repository.RuleGormStore
	instanceStore *repository.InstanceGormStore

	// Usecases
	chatbotUsecase  domainChatbot.IChatbotUsecase
	instanceUsecase domainInstance.IInstanceUsecase
)

var rootCmd = &cobra.Command{
	Use:   "zapedidos",
	Short: "WhatsApp chatbot engine for the ZapPedidos delivery marketplace",
}

func init() {
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	cobra.OnInitialize(initApp)
}

func initApp() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := os.MkdirAll(cfg.Paths.Storages, 0755); err != nil {
		logrus.Fatalf("Failed to create storage directory: %v", err)
	}

	db, err := coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	ruleStore = repository.NewRuleGormStore(db)
	if err := ruleStore.Init(ctx); err != nil {
		logrus.Fatalf("Failed to migrate chatbot rules schema: %v", err)
	}

	instanceStore = repository.NewInstanceGormStore(db)
	if err := instanceStore.Init(ctx); err != nil {
		logrus.Fatalf("Failed to migrate instances schema: %v", err)
	}

	// Rate counters live in Valkey when available so every node shares the
	// same fixed window; otherwise each node counts on its own.
	var limiter domain.RateLimitStore
	if cfg.Database.ValkeyEnabled {
		serverID := utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)
		valkeyClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Fatalf("Failed to connect to valkey: %v", err)
		}
		logrus.Infof("[APP] Valkey rate counters enabled (server %s)", serverID)
		limiter = repository.NewValkeyRateLimitStore(valkeyClient)
	} else {
		limiter = repository.NewMemoryRateLimitStore()
	}

	sender := gateway.NewClient(gateway.Config{
		BaseURL: cfg.Gateway.BaseURL,
		APIKey:  cfg.Gateway.APIKey,
		Timeout: time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
	})

	var poolCtx context.Context
	poolCtx, poolCancel = context.WithCancel(ctx)
	responsePool = msgworker.NewPool(cfg.Workers.Size, cfg.Workers.QueueSize)
	responsePool.Start(poolCtx)

	gate := application.NewAdmissionGate(instanceStore, limiter, application.GateConfig{
		MaxRequests: cfg.Webhook.MaxRequests,
		Window:      time.Duration(cfg.Webhook.WindowSeconds) * time.Second,
	})
	chatEngine = application.NewEngine(gate, ruleStore, ruleStore, sender, instanceStore, responsePool)

	chatbotUsecase = usecase.NewChatbotService(ruleStore)
	instanceUsecase = usecase.NewInstanceService(instanceStore)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the worker pool and connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if responsePool != nil {
		responsePool.Stop()
	}
	if poolCancel != nil {
		poolCancel()
	}
	if valkeyClient != nil {
		valkeyClient.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
