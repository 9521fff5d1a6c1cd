package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Case automation specifics
	TheHive TheHiveConfig
	SIEM    SIEMConfig
	Cortex  CortexConfig
	Intel   IntelConfig
	Mail    MailConfig
	Notify  NotifyConfig

	// Rule automation
	Automation AutomationConfig

	// Customer contact directory
	Customers []CustomerConfig

	// Webhook intake
	Webhook WebhookConfig

	// Worker pool for bulk side work
	Workers WorkersConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type TheHiveConfig struct {
	URL               string
	APIKey            string
	MailerResponderID string
}

type SIEMConfig struct {
	URL             string
	Token           string
	APITimeoutMin   int
	ClosingReasonID int64

	// Alert feed settings
	AlertSourceName string
	AlertType       string
	CaseTemplate    string
	MarkerTag       string
	OffenseFilter   string
}

type CortexConfig struct {
	URL        string
	APIKey     string
	AnalyzerID string
}

type IntelConfig struct {
	Type               string
	Tag                string
	TagPrefix          string
	SupportedDataTypes []string
	CaseTemplate       string
	SightingThreshold  float64
}

type MailConfig struct {
	Header     string
	Footer     string
	SenderName string
}

type NotifyConfig struct {
	InternalCustomerID string
	DebugCustomerID    string
}

type AutomationConfig struct {
	Enabled     bool
	RulesDir    string
	TagPatterns []string

	// Timestamp handling
	StartTimeVariable  string
	StopTimeVariable   string
	PlatformTimeLayout string
	QueryTimeLayout    string
	DisplayLayout      string
	DisplayTimezone    string
}

type CustomerConfig struct {
	ID        string
	Recipient string
	SlackURL  string
	TeamsURL  string
}

type WebhookConfig struct {
	Token           string
	AllowedIPs      []string
	RateLimitPerMin int
}

type WorkersConfig struct {
	MaxWorkers int
	QueueSize  int
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Case platform
	cfg.TheHive.URL = viper.GetString("thehive.url")
	cfg.TheHive.APIKey = expandEnvVar(viper.GetString("thehive.api_key"))
	cfg.TheHive.MailerResponderID = viper.GetString("thehive.mailer_responder_id")
	if cfg.TheHive.URL == "" {
		return nil, fmt.Errorf("thehive.url is required")
	}

	// SIEM
	cfg.SIEM.URL = viper.GetString("siem.url")
	cfg.SIEM.Token = expandEnvVar(viper.GetString("siem.token"))
	cfg.SIEM.APITimeoutMin = viper.GetInt("siem.api_timeout_min")
	cfg.SIEM.ClosingReasonID = viper.GetInt64("siem.closing_reason_id")
	cfg.SIEM.AlertSourceName = viper.GetString("siem.alert_source_name")
	cfg.SIEM.AlertType = viper.GetString("siem.alert_type")
	cfg.SIEM.CaseTemplate = viper.GetString("siem.case_template")
	cfg.SIEM.MarkerTag = viper.GetString("siem.marker_tag")
	cfg.SIEM.OffenseFilter = viper.GetString("siem.offense_filter")

	// Analysis engine
	cfg.Cortex.URL = viper.GetString("cortex.url")
	cfg.Cortex.APIKey = expandEnvVar(viper.GetString("cortex.api_key"))
	cfg.Cortex.AnalyzerID = viper.GetString("cortex.analyzer_id")

	// Threat intel
	cfg.Intel.Type = viper.GetString("intel.type")
	cfg.Intel.Tag = viper.GetString("intel.tag")
	cfg.Intel.TagPrefix = viper.GetString("intel.tag_prefix")
	cfg.Intel.SupportedDataTypes = viper.GetStringSlice("intel.supported_datatypes")
	cfg.Intel.CaseTemplate = viper.GetString("intel.case_template")
	cfg.Intel.SightingThreshold = viper.GetFloat64("intel.sighting_threshold")

	// Mail envelope
	cfg.Mail.Header = viper.GetString("mail.header")
	cfg.Mail.Footer = viper.GetString("mail.footer")
	cfg.Mail.SenderName = viper.GetString("mail.sender_name")

	// Notification routing
	cfg.Notify.InternalCustomerID = viper.GetString("notify.internal_customer_id")
	cfg.Notify.DebugCustomerID = viper.GetString("notify.debug_customer_id")

	// Rule automation
	cfg.Automation.Enabled = viper.GetBool("automation.enabled")
	cfg.Automation.RulesDir = viper.GetString("automation.rules_dir")
	cfg.Automation.TagPatterns = viper.GetStringSlice("automation.tag_patterns")
	cfg.Automation.StartTimeVariable = viper.GetString("automation.start_time_variable")
	cfg.Automation.StopTimeVariable = viper.GetString("automation.stop_time_variable")
	cfg.Automation.PlatformTimeLayout = viper.GetString("automation.platform_time_layout")
	cfg.Automation.QueryTimeLayout = viper.GetString("automation.query_time_layout")
	cfg.Automation.DisplayLayout = viper.GetString("automation.display_layout")
	cfg.Automation.DisplayTimezone = viper.GetString("automation.display_timezone")

	// Customers
	if viper.IsSet("customers") {
		customersRaw := viper.Get("customers")
		if customersList, ok := customersRaw.([]interface{}); ok {
			for _, c := range customersList {
				if customerMap, ok := c.(map[string]interface{}); ok {
					customer := CustomerConfig{
						ID:        getStringFromMap(customerMap, "id"),
						Recipient: getStringFromMap(customerMap, "recipient"),
						SlackURL:  getStringFromMap(customerMap, "slack_url"),
						TeamsURL:  getStringFromMap(customerMap, "teams_url"),
					}
					if customer.ID == "" {
						return nil, fmt.Errorf("customer entry without id")
					}
					cfg.Customers = append(cfg.Customers, customer)
				}
			}
		}
	}

	// Webhook intake
	cfg.Webhook.Token = expandEnvVar(viper.GetString("webhook.token"))
	cfg.Webhook.RateLimitPerMin = viper.GetInt("webhook.rate_limit_per_min")

	// Split allowed IPs since viper might not parse array seamlessly from env
	var ips []string
	if rawIps := viper.GetString("webhook.allowed_ips"); rawIps != "" {
		for _, ip := range strings.Split(rawIps, ",") {
			ip = strings.TrimSpace(ip)
			if ip != "" {
				ips = append(ips, ip)
			}
		}
	}
	cfg.Webhook.AllowedIPs = ips

	// Workers
	cfg.Workers.MaxWorkers = viper.GetInt("workers.max_workers")
	cfg.Workers.QueueSize = viper.GetInt("workers.queue_size")

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 5000)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("siem.api_timeout_min", 3)
	viper.SetDefault("siem.closing_reason_id", 1)
	viper.SetDefault("siem.alert_source_name", "QRadar_Offenses")
	viper.SetDefault("siem.alert_type", "SIEM")
	viper.SetDefault("siem.marker_tag", "QRadar")

	viper.SetDefault("intel.type", "misp")
	viper.SetDefault("intel.tag", "misp")
	viper.SetDefault("intel.tag_prefix", "MISP:type=")
	viper.SetDefault("intel.supported_datatypes", []string{"ip", "domain", "url", "hash"})
	viper.SetDefault("intel.sighting_threshold", 1)

	viper.SetDefault("automation.enabled", true)
	viper.SetDefault("automation.rules_dir", "./config/rules")
	viper.SetDefault("automation.start_time_variable", "Start Time")
	viper.SetDefault("automation.stop_time_variable", "Stop Time")
	viper.SetDefault("automation.platform_time_layout", "2006-01-02 15:04:05")
	viper.SetDefault("automation.query_time_layout", "2006-01-02 15:04:05")
	viper.SetDefault("automation.display_timezone", "UTC")

	viper.SetDefault("webhook.rate_limit_per_min", 60)

	viper.SetDefault("workers.max_workers", 4)
	viper.SetDefault("workers.queue_size", 64)
}

// expandEnvVar expands environment variables in the format ${VAR_NAME}
func expandEnvVar(value string) string {
	if value == "" {
		return value
	}

	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envValue := viper.GetString(envVar); envValue != "" {
			return envValue
		}
		if envValue := viper.GetString(strings.ToLower(envVar)); envValue != "" {
			return envValue
		}
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
	}

	return value
}

// Helper to safely extract values from map[string]interface{}
func getStringFromMap(m map[string]interface{}, key string) string {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
