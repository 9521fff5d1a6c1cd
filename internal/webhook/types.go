package webhook

// SecurityConfig holds webhook endpoint security settings.
type SecurityConfig struct {
	Token           string   // Shared token expected in X-Webhook-Token (optional)
	AllowedIPs      []string // IP whitelist, plain IPs or CIDR ranges (optional)
	RateLimitPerMin int      // Max requests per minute per client IP
}
