package utils

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config Configuration of the server, read from a YAML file
type Config struct {
	Server struct {
		Host               string        `yaml:"host"`
		Port               string        `yaml:"port"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
		MaxMultipartMemory int64         `yaml:"max_multipart_memory"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"`
		Dsn    string `yaml:"dsn"`
	} `yaml:"database"`

	Classifier struct {
		Backend         string        `yaml:"backend"`
		ModelPath       string        `yaml:"model_path"`
		EmbeddingsPath  string        `yaml:"embeddings_path"`
		SharedLibrary   string        `yaml:"shared_library"`
		InputName       string        `yaml:"input_name"`
		OutputName      string        `yaml:"output_name"`
		EmbeddingDim    int           `yaml:"embedding_dim"`
		CacheTTL        time.Duration `yaml:"cache_ttl"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"classifier"`

	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`

	// Templates is an optional directory overriding the embedded templates
	Templates string `yaml:"templates"`
}

// DefaultConfig The configuration used when no file is given
func DefaultConfig() *Config {
	config := &Config{}
	config.Server.Port = "8000"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 60 * time.Second
	config.Server.ShutdownTimeout = 5 * time.Second
	config.Server.MaxMultipartMemory = 32 << 20

	config.Database.Driver = "sqlite"
	config.Database.Dsn = "images.sqlite3"

	config.Classifier.Backend = "clip"
	config.Classifier.ModelPath = "assets/clip-vit-base-patch32-vision.onnx"
	config.Classifier.EmbeddingsPath = "assets/clip-vit-base-patch32-labels.json"
	config.Classifier.InputName = "pixel_values"
	config.Classifier.OutputName = "image_embeds"
	config.Classifier.EmbeddingDim = 512
	config.Classifier.CacheTTL = 10 * time.Minute
	config.Classifier.CleanupInterval = time.Minute

	config.Logging.Level = "info"
	return config
}

// NewConfig Returns a new decoded Config struct, starting from the defaults
func NewConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if configPath == "" {
		return config, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return config, nil
}

func (config *Config) validate() error {
	switch config.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}
	if config.Database.Dsn == "" {
		return fmt.Errorf("database dsn is empty")
	}

	switch config.Classifier.Backend {
	case "clip":
		if config.Classifier.ModelPath == "" || config.Classifier.EmbeddingsPath == "" {
			return fmt.Errorf("clip classifier needs model_path and embeddings_path")
		}
	case "filename":
	default:
		return fmt.Errorf("unsupported classifier backend %q", config.Classifier.Backend)
	}
	return nil
}

// ValidateConfigPath Ensures that the path provided is a readable file
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a normal file", path)
	}
	return nil
}

// ParseFlags Parses the command line flags and returns the config path and debug mode.
// An empty config path means the defaults are used.
func ParseFlags() (string, bool, error) {
	var configPath string
	var debugMode bool

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.BoolVar(&debugMode, "debug", false, "enable gin debug mode")
	flag.Parse()

	if configPath == "" {
		return "", debugMode, nil
	}
	if err := ValidateConfigPath(configPath); err != nil {
		return "", false, err
	}
	return configPath, debugMode, nil
}
