package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Data         DataConfig         `yaml:"data"`
	GitHub       GitHubConfig       `yaml:"github"`
	Cache        CacheConfig        `yaml:"cache"`
	Judge        JudgeConfig        `yaml:"judge"`
	Learning     LearningConfig     `yaml:"learning"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type DataConfig struct {
	Dir string `yaml:"dir"`
}

type GitHubConfig struct {
	APIURL       string        `yaml:"api_url"`
	Token        string        `yaml:"token"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type CacheConfig struct {
	MaxSize int `yaml:"max_size"`
}

type JudgeConfig struct {
	ConfigPath string `yaml:"config_path"`
}

type LearningConfig struct {
	Store string `yaml:"store"` // memory, file, db
	Path  string `yaml:"path"`
}

type OrchestratorConfig struct {
	Parallelism int `yaml:"parallelism"`
	HistoryCap  int `yaml:"history_cap"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
		},
		Data: DataConfig{
			Dir: "./data",
		},
		GitHub: GitHubConfig{
			APIURL:       "https://api.github.com",
			FetchTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			MaxSize: 100,
		},
		Learning: LearningConfig{
			Store: "file",
		},
		Orchestrator: OrchestratorConfig{
			Parallelism: 1,
			HistoryCap:  1000,
		},
	}
}

func loadConfig() *Config {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			klog.Warningf("配置文件解析失败，使用默认值: path=%s, err=%v", configPath, err)
		}
	}

	applyEnv(config)
	return config
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	// 数据目录环境变量
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		config.Data.Dir = dataDir
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	}
	if apiURL := os.Getenv("GITHUB_API_URL"); apiURL != "" {
		config.GitHub.APIURL = apiURL
	}
	if timeout := os.Getenv("FETCH_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.GitHub.FetchTimeout = d
		} else {
			klog.Warningf("FETCH_TIMEOUT 无效: %s", timeout)
		}
	}

	if size := os.Getenv("CACHE_MAX_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			config.Cache.MaxSize = n
		} else {
			klog.Warningf("CACHE_MAX_SIZE 无效: %s", size)
		}
	}
	if p := os.Getenv("JUDGE_CONFIG_PATH"); p != "" {
		config.Judge.ConfigPath = p
	}
	if store := os.Getenv("LEARNING_STORE"); store != "" {
		config.Learning.Store = store
	}
	if p := os.Getenv("LEARNING_PATH"); p != "" {
		config.Learning.Path = p
	}
	if par := os.Getenv("ORCHESTRATOR_PARALLELISM"); par != "" {
		if n, err := strconv.Atoi(par); err == nil {
			config.Orchestrator.Parallelism = n
		} else {
			klog.Warningf("ORCHESTRATOR_PARALLELISM 无效: %s", par)
		}
	}

	config.resolvePaths()
}

// resolvePaths 未显式配置的文件路径放在数据目录下
func (c *Config) resolvePaths() {
	if c.Database.DSN == "" && c.Database.Type != "mysql" {
		c.Database.DSN = filepath.Join(c.Data.Dir, "app.db")
	}
	if c.Judge.ConfigPath == "" {
		c.Judge.ConfigPath = filepath.Join(c.Data.Dir, "judge_config.yaml")
	}
	if c.Learning.Path == "" {
		c.Learning.Path = filepath.Join(c.Data.Dir, "learning_data.json")
	}
}

// WithDataDir 返回数据目录替换为 dir 的副本，数据目录下的派生路径随之改变
func (c *Config) WithDataDir(dir string) *Config {
	out := *c
	out.Data.Dir = dir
	if out.Database.Type != "mysql" {
		out.Database.DSN = ""
	}
	out.Judge.ConfigPath = ""
	out.Learning.Path = ""
	out.resolvePaths()
	return &out
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func UpdateConfig(newCfg *Config) {
	cfg = newCfg
}
