package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr       string        `default:"0.0.0.0:8080" usage:"Checkout server listen address"`
	ShopAPIURL string        `usage:"Base URL of the shop API (SHOP_SHOP_API_URL or SHOP_API_URL)" flag:"shop-api-url"`
	APITimeout time.Duration `default:"15s" usage:"Shop API request timeout" flag:"api-timeout"`
	Gateway    GatewayConfig
	Checkout   CheckoutConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Graceful   GracefulConfig
}

// GatewayConfig holds the payment gateway widget settings.
type GatewayConfig struct {
	KeyID        string `usage:"Publishable gateway key (SHOP_GATEWAY_KEY_ID)" flag:"gateway-key-id"`
	ScriptURL    string `default:"https://checkout.razorpay.com/v1/checkout.js" usage:"Hosted checkout script URL" flag:"gateway-script-url"`
	Currency     string `default:"INR" usage:"ISO currency code for widget amounts"`
	MerchantName string `default:"E-commerce Shop" usage:"Merchant name shown in the widget header" flag:"merchant-name"`
	Description  string `default:"Order payment" usage:"Payment description shown in the widget"`
	ThemeColor   string `default:"#F37254" usage:"Widget accent color" flag:"theme-color"`
}

// CheckoutConfig holds checkout flow settings.
type CheckoutConfig struct {
	PaymentMethod string `default:"razorpay" usage:"Payment method recorded on order drafts" flag:"payment-method"`
	SuccessPath   string `default:"/shop/payment-success" usage:"Storefront path shown after a successful payment" flag:"success-path"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/shop/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.ShopAPIURL == "" {
		return nil, errors.New("shop API URL is required: set SHOP_SHOP_API_URL or SHOP_API_URL")
	}
	if cfg.Gateway.KeyID == "" {
		return nil, errors.New("gateway key is required: set SHOP_GATEWAY_KEY_ID")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like PORT to the application's
// SHOP_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.ShopAPIURL == "" {
		if v := os.Getenv("SHOP_API_URL"); v != "" {
			c.ShopAPIURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
