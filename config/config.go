package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile 默认配置文件路径
const DefaultConfigFile = "config.yaml"

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Addr string `yaml:"-"` // 不从配置文件读取，而是在加载后计算
	} `yaml:"server"`
	Auth struct {
		APIKey string `yaml:"api_key"` // 为空时不校验请求签名
	} `yaml:"auth"`
	Consolidation struct {
		Provider   string `yaml:"provider"`    // siliconflow / gemini / http
		URL        string `yaml:"url"`         // provider=http 时的外部合并服务地址
		TimeoutSec int    `yaml:"timeout_sec"` // 请求超时时间,单位:秒
	} `yaml:"consolidation"`
	SiliconFlow struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"siliconflow"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	DB struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		Database        string `yaml:"database"`
		Charset         string `yaml:"charset"`
		DSN             string `yaml:"-"`                 // 不从配置文件读取，而是在加载后计算
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（分钟）
		AutoMigrate     bool   `yaml:"auto_migrate"`      // 启动时执行数据库迁移
	} `yaml:"database"`
	Retention struct {
		Days int    `yaml:"days"` // 购物清单保留天数，<=0 表示不清理
		Cron string `yaml:"cron"` // 清理任务的cron表达式
	} `yaml:"retention"`
}

// Load 从默认位置加载配置
func Load() *Config {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom 从指定的yaml文件加载配置，文件不存在时完全使用环境变量
func LoadFrom(path string) *Config {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量

	var cfg Config

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Printf("Error loading %s: %v, falling back to environment variables", path, err)
			cfg = Config{}
		} else {
			log.Printf("Loading configuration from %s", path)
		}
	} else {
		log.Println("配置文件不存在，从环境变量加载配置")
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg
}

// applyEnvOverrides 从环境变量中加载敏感信息
func (cfg *Config) applyEnvOverrides() {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	// 数据库用户名和密码
	if envUsername := os.Getenv("DATABASE_USERNAME"); envUsername != "" {
		cfg.DB.Username = envUsername
	}
	if envPassword := os.Getenv("DATABASE_PASSWORD"); envPassword != "" {
		cfg.DB.Password = envPassword
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	}

	if apiKey := os.Getenv("SILICONFLOW_API_KEY"); apiKey != "" {
		cfg.SiliconFlow.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("SHOPPING_API_KEY"); apiKey != "" {
		cfg.Auth.APIKey = apiKey
	}
}

// applyDefaults 为未配置的字段设置默认值并计算派生字段
func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

	if cfg.Consolidation.Provider == "" {
		cfg.Consolidation.Provider = "siliconflow"
	}
	if cfg.Consolidation.TimeoutSec <= 0 {
		cfg.Consolidation.TimeoutSec = 60
	}
	if cfg.SiliconFlow.BaseURL == "" {
		cfg.SiliconFlow.BaseURL = "https://api.siliconflow.cn"
	}
	if cfg.SiliconFlow.Model == "" {
		cfg.SiliconFlow.Model = "Qwen/Qwen2.5-7B-Instruct"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-1.5-flash"
	}
	if cfg.Retention.Cron == "" {
		cfg.Retention.Cron = "30 3 * * *"
	}

	if cfg.DB.Charset == "" {
		cfg.DB.Charset = "utf8mb4"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 3306
	}
	// 只有在没有直接提供DSN且有主机信息时才构建DSN
	if cfg.DB.DSN == "" && cfg.DB.Host != "" {
		cfg.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&loc=Local",
			cfg.DB.Username,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.Database,
			cfg.DB.Charset)
	}
}
