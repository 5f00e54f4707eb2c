package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	// EnvPrefix prefixes every environment override, e.g. STOREFRONT_API_BASEURL.
	EnvPrefix = "STOREFRONT_"

	// EnvConfigFile names the YAML config file when --config is not given.
	EnvConfigFile = EnvPrefix + "CONFIG"
)

type Config struct {
	Env    string `yaml:"env" validate:"oneof=dev staging prod"`
	Locale string `yaml:"locale" validate:"oneof=es en"`

	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=json text"`
	} `yaml:"log"`

	API struct {
		BaseURL   string        `yaml:"baseURL" validate:"required,url"`
		Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
		RateLimit int           `yaml:"rateLimit" validate:"gte=0"` // requests per second, 0 disables
		RateBurst int           `yaml:"rateBurst" validate:"gte=0"`
	} `yaml:"api"`

	Store struct {
		Driver        string `yaml:"driver" validate:"oneof=memory file sqlite redis"`
		Path          string `yaml:"path"`
		Passphrase    string `yaml:"passphrase"`
		RedisAddr     string `yaml:"redisAddr" validate:"required_if=Driver redis"`
		RedisPassword string `yaml:"redisPassword"`
		RedisDB       int    `yaml:"redisDB" validate:"gte=0"`
		RedisPrefix   string `yaml:"redisPrefix"`
	} `yaml:"store"`
}

// LoadConfig reads the optional YAML file at path, then applies STOREFRONT_*
// variables from environ on top, fills defaults and validates the result.
func LoadConfig(path string, environ []string) (*Config, error) {
	cfg := new(Config)
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s failed", path)
		}
	}

	existing := k.Raw()

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if key == EnvConfigFile {
				return "", nil
			}
			// STORE_REDISADDR -> store.redisAddr when the file uses that spelling
			return canonicalizeEnvKey(strings.TrimPrefix(key, EnvPrefix), existing), value
		},
		EnvironFunc: func() []string { return environ },
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
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
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	cfg.applyDefaults()

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// ConfigPath picks the config file: the flag value, else STOREFRONT_CONFIG.
func ConfigPath(flagValue string, environ []string) string {
	if flagValue != "" {
		return flagValue
	}
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, EnvConfigFile+"="); ok {
			return v
		}
	}
	return ""
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "prod"
	}
	if c.Locale == "" {
		c.Locale = "es"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "file"
	}
	if c.Store.Path == "" {
		switch c.Store.Driver {
		case "file":
			c.Store.Path = defaultStatePath("session.json")
		case "sqlite":
			c.Store.Path = defaultStatePath("session.db")
		}
	}
}

// defaultStatePath places name under the user's config directory, falling
// back to the working directory.
func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "storefront", name)
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
