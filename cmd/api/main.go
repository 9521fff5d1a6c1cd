package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"case-automation/config"
	"case-automation/internal/automation"
	"case-automation/internal/changedetect"
	"case-automation/internal/classifier"
	"case-automation/internal/dispatch"
	"case-automation/internal/extract"
	hiveHandler "case-automation/internal/handlers/hive"
	intelHandler "case-automation/internal/handlers/intel"
	notifyHandler "case-automation/internal/handlers/notify"
	siemHandler "case-automation/internal/handlers/siem"
	"case-automation/internal/httpserver"
	"case-automation/internal/model"
	"case-automation/internal/render"
	"case-automation/internal/rules"
	"case-automation/internal/webhook"
	"case-automation/pkg/cortex"
	"case-automation/pkg/log"
	"case-automation/pkg/notify"
	"case-automation/pkg/qradar"
	"case-automation/pkg/thehive"
	"case-automation/pkg/workpool"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting case automation service...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)
	logger.Infof(ctx, "Case platform URL: %s", cfg.TheHive.URL)

	// 3. Rule set
	var ruleSet model.RuleSet
	if cfg.Automation.Enabled {
		ruleSet, err = config.LoadRules(cfg.Automation.RulesDir, cfg.Automation.TagPatterns)
		if err != nil {
			logger.Errorf(ctx, "Failed to load rules: %v", err)
			return
		}
		logger.Infof(ctx, "Loaded %d automation rules from %s", len(ruleSet.Rules), cfg.Automation.RulesDir)
	} else {
		logger.Warn(ctx, "Rule automation disabled")
	}

	matcher, err := rules.New(ruleSet, logger)
	if err != nil {
		logger.Errorf(ctx, "Failed to compile tag patterns: %v", err)
		return
	}

	// 4. External clients
	hiveClient := thehive.NewClient(cfg.TheHive.URL, cfg.TheHive.APIKey)
	siemClient := qradar.NewClient(cfg.SIEM.URL, cfg.SIEM.Token, time.Duration(cfg.SIEM.APITimeoutMin)*time.Minute)
	cortexClient := cortex.NewClient(cfg.Cortex.URL, cfg.Cortex.APIKey)
	poster := notify.NewClient()

	// 5. Shared services
	customers := config.CustomerDirectoryOf(cfg.Customers)
	extractor := extract.New()

	renderer, err := render.New(
		render.Config{
			StartTimeVariable: cfg.Automation.StartTimeVariable,
			StartTimeLayout:   cfg.Automation.PlatformTimeLayout,
			DisplayLayout:     cfg.Automation.DisplayLayout,
			DisplayTimezone:   cfg.Automation.DisplayTimezone,
		},
		render.MailSettings{
			Header:     cfg.Mail.Header,
			Footer:     cfg.Mail.Footer,
			SenderName: cfg.Mail.SenderName,
		},
		customers,
		extractor,
		logger,
	)
	if err != nil {
		logger.Errorf(ctx, "Failed to build renderer: %v", err)
		return
	}

	classifierSvc := classifier.New(classifier.Config{
		SIEMTag:        cfg.SIEM.MarkerTag,
		SIEMSource:     cfg.SIEM.AlertSourceName,
		IntelType:      cfg.Intel.Type,
		IntelTag:       cfg.Intel.Tag,
		IntelTagPrefix: cfg.Intel.TagPrefix,
	}, &caseAlertFinder{client: hiveClient}, logger)

	pool := workpool.New(cfg.Workers.MaxWorkers, cfg.Workers.QueueSize, logger)
	detector := changedetect.New(logger)

	// 6. Action handlers and event modules
	hiveH := hiveHandler.New(
		hiveHandler.Config{MailerResponderID: cfg.TheHive.MailerResponderID},
		hiveClient, renderer, logger,
	)
	siemH := siemHandler.New(
		siemHandler.Config{
			StartTimeVariable:  cfg.Automation.StartTimeVariable,
			StopTimeVariable:   cfg.Automation.StopTimeVariable,
			PlatformTimeLayout: cfg.Automation.PlatformTimeLayout,
			QueryTimeLayout:    cfg.Automation.QueryTimeLayout,
			ClosingReasonID:    cfg.SIEM.ClosingReasonID,
		},
		siemClient, hiveClient, renderer, extractor, pool, logger,
	)
	intelH := intelHandler.New(
		intelHandler.Config{
			SupportedDataTypes: cfg.Intel.SupportedDataTypes,
			CaseTemplate:       cfg.Intel.CaseTemplate,
			AnalyzerID:         cfg.Cortex.AnalyzerID,
			SightingThreshold:  cfg.Intel.SightingThreshold,
		},
		hiveClient, cortexClient, logger,
	)
	notifyH := notifyHandler.New(
		notifyHandler.Config{
			InternalCustomerID: cfg.Notify.InternalCustomerID,
			DebugCustomerID:    cfg.Notify.DebugCustomerID,
		},
		customers, renderer, poster, hiveH, logger,
	)

	registry := dispatch.NewRegistry()
	registry.Register("hive", hiveH)
	registry.Register("siem", siemH)
	registry.Register("notify", notifyH)
	dispatcher := dispatch.New(registry, logger)

	// 7. Processing pipeline
	automationUC := automation.New(
		automation.Config{RuleAutomation: cfg.Automation.Enabled},
		classifierSvc, matcher, dispatcher,
		[]automation.EventModule{siemH, intelH},
		logger,
	)

	webhookH := webhook.NewHandler(automationUC, webhook.SecurityConfig{
		Token:           cfg.Webhook.Token,
		AllowedIPs:      cfg.Webhook.AllowedIPs,
		RateLimitPerMin: cfg.Webhook.RateLimitPerMin,
	}, logger)

	feeder := siemHandler.NewFeeder(
		siemHandler.FeederConfig{
			AlertSourceName: cfg.SIEM.AlertSourceName,
			AlertType:       cfg.SIEM.AlertType,
			CaseTemplate:    cfg.SIEM.CaseTemplate,
			MarkerTag:       cfg.SIEM.MarkerTag,
			OffenseFilter:   cfg.SIEM.OffenseFilter,
			TimeLayout:      cfg.Automation.PlatformTimeLayout,
		},
		siemClient, hiveClient, detector, pool, logger,
	)

	// 8. HTTP server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:         logger,
		Port:           cfg.HTTPServer.Port,
		Mode:           cfg.HTTPServer.Mode,
		Environment:    cfg.Environment.Name,
		WebhookHandler: webhookH,
		Feeder:         feeder,
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to initialize HTTP server: %v", err)
		return
	}

	// 9. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Errorf(ctx, "Failed to run server: %v", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
