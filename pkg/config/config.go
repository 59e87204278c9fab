package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig 远端撮合服务配置
type ServerConfig struct {
	Host           string // 服务地址，例如 http://localhost:3000
	TimeoutSeconds int    // 单次请求超时（秒）
	RetryCount     int    // 请求重试次数
}

// PollConfig 轮询配置
type PollConfig struct {
	IntervalSeconds int // 快照轮询间隔（秒）
	TradeLimit      int // 成交列表展示条数
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Config 应用配置
type Config struct {
	Server      ServerConfig
	Poll        PollConfig
	Log         LogConfig
	JournalPath string // 本地订单流水的持久化路径
}

// PollInterval 轮询间隔
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// RequestTimeout 请求超时
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// configFile 配置文件结构（YAML 解析用）
type configFile struct {
	Server struct {
		Host           string `yaml:"host"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		RetryCount     int    `yaml:"retry_count"`
	} `yaml:"server"`
	Poll struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		TradeLimit      int `yaml:"trade_limit"`
	} `yaml:"poll"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
	JournalPath string `yaml:"journal_path"`
}

var globalConfig *Config
var configFilePath string

// SetConfigPath 设置配置文件路径
func SetConfigPath(path string) {
	configFilePath = path
	globalConfig = nil
}

// Load 加载配置
func Load() (*Config, error) {
	return LoadFromFile(configFilePath)
}

// LoadFromFile 从指定文件加载配置
// 优先级：环境变量 > 配置文件 > 默认值。文件不存在不算错误。
func LoadFromFile(filePath string) (*Config, error) {
	if globalConfig != nil && configFilePath == filePath {
		return globalConfig, nil
	}

	var cf *configFile
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			cf = &configFile{}
			if err := yaml.Unmarshal(data, cf); err != nil {
				return nil, fmt.Errorf("解析配置文件失败 %s: %w", filePath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("读取配置文件失败 %s: %w", filePath, err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host:           pick(os.Getenv("CLOB_HOST"), fileStr(cf, func(c *configFile) string { return c.Server.Host }), "http://localhost:3000"),
			TimeoutSeconds: pickInt(parseIntEnv("CLOB_TIMEOUT_SECONDS"), fileInt(cf, func(c *configFile) int { return c.Server.TimeoutSeconds }), 10),
			RetryCount:     pickInt(parseIntEnv("CLOB_RETRY_COUNT"), fileInt(cf, func(c *configFile) int { return c.Server.RetryCount }), 2),
		},
		Poll: PollConfig{
			IntervalSeconds: pickInt(parseIntEnv("CLOB_POLL_INTERVAL_SECONDS"), fileInt(cf, func(c *configFile) int { return c.Poll.IntervalSeconds }), 2),
			TradeLimit:      pickInt(parseIntEnv("CLOB_TRADE_LIMIT"), fileInt(cf, func(c *configFile) int { return c.Poll.TradeLimit }), 15),
		},
		Log: LogConfig{
			Level:      pick(os.Getenv("CLOB_LOG_LEVEL"), fileStr(cf, func(c *configFile) string { return c.Log.Level }), "info"),
			File:       pick(os.Getenv("CLOB_LOG_FILE"), fileStr(cf, func(c *configFile) string { return c.Log.File }), "logs/goclob.log"),
			MaxSize:    pickInt(0, fileInt(cf, func(c *configFile) int { return c.Log.MaxSize }), 50),
			MaxBackups: pickInt(0, fileInt(cf, func(c *configFile) int { return c.Log.MaxBackups }), 3),
			MaxAge:     pickInt(0, fileInt(cf, func(c *configFile) int { return c.Log.MaxAge }), 7),
			Compress:   cf != nil && cf.Log.Compress,
		},
		JournalPath: pick(os.Getenv("CLOB_JOURNAL_PATH"), fileStr(cf, func(c *configFile) string { return c.JournalPath }), "data"),
	}

	if configFilePath == filePath {
		globalConfig = config
	}
	return config, nil
}

// pick 返回第一个非空字符串
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// pickInt 返回第一个正整数
func pickInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func parseIntEnv(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func fileStr(cf *configFile, get func(*configFile) string) string {
	if cf == nil {
		return ""
	}
	return get(cf)
}

func fileInt(cf *configFile, get func(*configFile) int) int {
	if cf == nil {
		return 0
	}
	return get(cf)
}
