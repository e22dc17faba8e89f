package config

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Session  SessionConfig  `mapstructure:"session"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Shop     ShopConfig     `mapstructure:"shop"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Shipping ShippingConfig `mapstructure:"shipping"`
	Tax      TaxConfig      `mapstructure:"tax"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres / mysql
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置（结算会话存储与限流）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
	// 定期清理过期购物车的间隔，0 表示关闭
	CartSweepIntervalSeconds int `mapstructure:"cart_sweep_interval_seconds"`
}

// SessionConfig 会话 Cookie 配置
type SessionConfig struct {
	CookieName         string `mapstructure:"cookie_name"`
	AuthKey            string `mapstructure:"auth_key"`
	EncryptKey         string `mapstructure:"encrypt_key"`
	MaxAgeSeconds      int    `mapstructure:"max_age_seconds"`
	Secure             bool   `mapstructure:"secure"`
	RememberCookieName string `mapstructure:"remember_cookie_name"`
	RememberMaxAgeDays int    `mapstructure:"remember_max_age_days"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CheckoutRateLimit RateLimitConfig `mapstructure:"checkout_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// OptionAxisConfig 商品规格轴配置（如 1=Size, 2=Colour）
type OptionAxisConfig struct {
	ID   int    `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// OrderStatusConfig 订单状态枚举项
type OrderStatusConfig struct {
	Value int    `mapstructure:"value"`
	Label string `mapstructure:"label"`
}

// ShopConfig 商店行为配置
type ShopConfig struct {
	CartExpiryMinutes  int                 `mapstructure:"cart_expiry_minutes"`
	OptionAxes         []OptionAxisConfig  `mapstructure:"option_axes"`
	OrderStatuses      []OrderStatusConfig `mapstructure:"order_statuses"`
	DefaultOrderStatus int                 `mapstructure:"default_order_status"`
}

// CheckoutConfig 结算步骤开关
type CheckoutConfig struct {
	StepsSplit        bool `mapstructure:"steps_split"`
	StepsPayment      bool `mapstructure:"steps_payment"`
	StepsConfirmation bool `mapstructure:"steps_confirmation"`
}

// ShippingConfig 默认运费处理器配置
type ShippingConfig struct {
	Type   string `mapstructure:"type"`
	Amount string `mapstructure:"amount"`
}

// TaxConfig 默认税费处理器配置（percent 为 0 表示不计税）
type TaxConfig struct {
	Type    string `mapstructure:"type"`
	Percent string `mapstructure:"percent"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("./etc")

	setDefaults(v)

	// server.port -> SERVER_PORT
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	cfg, err := decode(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

// Default 返回仅包含默认值的配置（测试与命令行工具使用）
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(fmt.Errorf("默认配置解析失败: %w", err))
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Shop.normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "storefront.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/storefront.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sf")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		"default": 10,
	})
	v.SetDefault("queue.cart_sweep_interval_seconds", 0)
	v.SetDefault("session.cookie_name", "storefront_session")
	v.SetDefault("session.auth_key", "change-me-session-auth-key-32-bytes!")
	v.SetDefault("session.encrypt_key", "")
	v.SetDefault("session.max_age_seconds", 1209600)
	v.SetDefault("session.secure", false)
	v.SetDefault("session.remember_cookie_name", "remember")
	v.SetDefault("session.remember_max_age_days", 365)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.checkout_rate_limit.window_seconds", 60)
	v.SetDefault("security.checkout_rate_limit.max_requests", 30)
	v.SetDefault("shop.cart_expiry_minutes", 30)
	v.SetDefault("shop.option_axes", []map[string]interface{}{
		{"id": 1, "name": "Size"},
		{"id": 2, "name": "Colour"},
	})
	v.SetDefault("shop.order_statuses", []map[string]interface{}{
		{"value": 1, "label": "Unprocessed"},
		{"value": 2, "label": "Processed"},
	})
	v.SetDefault("shop.default_order_status", 1)
	v.SetDefault("checkout.steps_split", true)
	v.SetDefault("checkout.steps_payment", true)
	v.SetDefault("checkout.steps_confirmation", true)
	v.SetDefault("shipping.type", "Flat rate shipping")
	v.SetDefault("shipping.amount", "10.00")
	v.SetDefault("tax.type", "")
	v.SetDefault("tax.percent", "0")
}

func (c *ShopConfig) normalize() {
	if c.CartExpiryMinutes <= 0 {
		c.CartExpiryMinutes = 30
	}
	if len(c.OrderStatuses) == 0 {
		c.OrderStatuses = []OrderStatusConfig{
			{Value: 1, Label: "Unprocessed"},
			{Value: 2, Label: "Processed"},
		}
	}
	if c.DefaultOrderStatus == 0 {
		c.DefaultOrderStatus = c.OrderStatuses[0].Value
	}
}

// AxisName 返回规格轴名称，未配置时返回空字符串
func (c ShopConfig) AxisName(id int) string {
	for _, axis := range c.OptionAxes {
		if axis.ID == id {
			return axis.Name
		}
	}
	return ""
}

// HasAxis 判断规格轴是否已配置
func (c ShopConfig) HasAxis(id int) bool {
	for _, axis := range c.OptionAxes {
		if axis.ID == id {
			return true
		}
	}
	return false
}

// OrderStatusLabel 返回订单状态的展示名称
func (c ShopConfig) OrderStatusLabel(value int) string {
	for _, status := range c.OrderStatuses {
		if status.Value == value {
			return status.Label
		}
	}
	return ""
}
