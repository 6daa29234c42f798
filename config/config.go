package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath             = "."
	defaultStoragePath      = "medtrack.db"
	defaultBusyTimeout      = 5 * time.Second
	defaultOrderMaxAgeDays  = 30
	defaultShareBucketURL   = "mem://"
	defaultQRCodeSize       = 256
	defaultQRCodeCorrection = "medium"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	// Storage configures the on-device SQLite database
	Storage *StorageConfig `json:"storage" yaml:"storage"`

	// Retention configures the order retention sweep
	Retention *RetentionConfig `json:"retention" yaml:"retention"`

	// Share configures the sharing subsystem
	Share *ShareConfig `json:"share" yaml:"share"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// StorageConfig defines the local database location and connection behaviour
type StorageConfig struct {
	// Path to the SQLite file, relative paths resolve against the working directory
	Path string `json:"path" yaml:"path"`

	// How long a statement waits on a locked database before failing
	BusyTimeout time.Duration `json:"busyTimeout" yaml:"busyTimeout"`
}

// RetentionConfig defines how long orders are kept
type RetentionConfig struct {
	OrderMaxAgeDays int `json:"orderMaxAgeDays" yaml:"orderMaxAgeDays"`
}

// ShareConfig defines where share artifacts are staged and how QR codes render
type ShareConfig struct {
	// gocloud blob URL, e.g. file:///var/lib/medtrack/share or mem://
	BucketURL string        `json:"bucketUrl" yaml:"bucketUrl"`
	QRCode    *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment variables override the file, e.g. STORAGE_PATH -> storage.path
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	return cfg, nil
}

// ApplyDefaults fills every unset section so callers never see nil sub-configs.
func (cfg *Config) ApplyDefaults() {
	if cfg.Storage == nil {
		cfg.Storage = &StorageConfig{}
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = defaultStoragePath
	}
	if cfg.Storage.BusyTimeout <= 0 {
		cfg.Storage.BusyTimeout = defaultBusyTimeout
	}

	if cfg.Retention == nil {
		cfg.Retention = &RetentionConfig{}
	}
	if cfg.Retention.OrderMaxAgeDays <= 0 {
		cfg.Retention.OrderMaxAgeDays = defaultOrderMaxAgeDays
	}

	if cfg.Share == nil {
		cfg.Share = &ShareConfig{}
	}
	if strings.TrimSpace(cfg.Share.BucketURL) == "" {
		cfg.Share.BucketURL = defaultShareBucketURL
	}
	if cfg.Share.QRCode == nil {
		cfg.Share.QRCode = &QRCodeConfig{}
	}
	if cfg.Share.QRCode.Size <= 0 {
		cfg.Share.QRCode.Size = defaultQRCodeSize
	}
	if cfg.Share.QRCode.ErrorCorrectionLevel == "" {
		cfg.Share.QRCode.ErrorCorrectionLevel = defaultQRCodeCorrection
	}

	if cfg.Env.Log.Level == "" {
		cfg.Env.Log.Level = "info"
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
