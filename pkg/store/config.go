package store

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/timeutil"
)

// Config keys.
const (
	KeySheetID         = "sheet_id"
	KeyClass           = "class"
	KeyClasses         = "classes"
	KeySourceURL       = "source_url"
	KeyFile            = "file"
	KeyWebhookURL      = "webhook_url"
	KeyIgnoredColumns  = "ignored_columns"
	KeyRollover        = "rollover"
	KeyCountdownWindow = "countdown_window"
	KeyFetchTimeout    = "fetch_timeout"
	KeyHighlight       = "highlight"
	KeyFocusThreshold  = "focus_threshold"
	KeyCardWidth       = "card_width"
	KeyCardGap         = "card_gap"
	KeyStatePath       = "state_path"
)

// Settings is the resolved configuration.
type Settings struct {
	SheetID         string         `json:"sheet_id,omitempty" yaml:"sheet_id"`
	Class           int            `json:"class" yaml:"class" validate:"gte=1"`
	Classes         map[int]string `json:"classes" yaml:"classes" validate:"required,dive,notblank"`
	SourceURL       string         `json:"source_url,omitempty" yaml:"source_url" validate:"omitempty,url"`
	File            string         `json:"file,omitempty" yaml:"file"`
	WebhookURL      string         `json:"webhook_url,omitempty" yaml:"webhook_url" validate:"omitempty,url"`
	IgnoredColumns  []int          `json:"ignored_columns" yaml:"ignored_columns" validate:"dive,gte=0"`
	Rollover        time.Duration  `json:"rollover" yaml:"rollover" validate:"gt=0"`
	CountdownWindow time.Duration  `json:"countdown_window" yaml:"countdown_window" validate:"gt=0"`
	FetchTimeout    time.Duration  `json:"fetch_timeout" yaml:"fetch_timeout" validate:"gt=0"`
	Highlight       time.Duration  `json:"highlight" yaml:"highlight" validate:"gt=0"`
	FocusThreshold  float64        `json:"focus_threshold" yaml:"focus_threshold" validate:"gt=0"`
	CardWidth       int            `json:"card_width" yaml:"card_width" validate:"gte=8,lte=120"`
	CardGap         int            `json:"card_gap" yaml:"card_gap" validate:"gte=0,lte=20"`
	StatePath       string         `json:"state_path" yaml:"state_path" validate:"notblank"`
}

// LoadOptions tunes LoadSettings.
type LoadOptions struct {
	// ConfigFile is an explicit config file. When empty, .duedeck.yaml is
	// searched in $DUEDECK_CONFIG_PATH and the working directory.
	ConfigFile string
	// DotEnv is loaded into the environment when it exists. Defaults to ".env".
	DotEnv string
	// Overrides win over every other source, typically set from flags.
	Overrides map[string]interface{}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyClass, 1)
	v.SetDefault(KeyClasses, map[string]string{"1": "0"})
	v.SetDefault(KeyIgnoredColumns, []int{0})
	v.SetDefault(KeyRollover, timeutil.FormatSpan(timeutil.DefaultRollover))
	v.SetDefault(KeyCountdownWindow, "4h")
	v.SetDefault(KeyFetchTimeout, "30s")
	v.SetDefault(KeyHighlight, "800ms")
	v.SetDefault(KeyFocusThreshold, 150.0)
	v.SetDefault(KeyCardWidth, 28)
	v.SetDefault(KeyCardGap, 2)
	v.SetDefault(KeyStatePath, "~/.duedeck")
}

// LoadSettings reads defaults, the config file, DUEDECK_* environment
// variables and overrides, in increasing precedence, then validates the
// result.
func LoadSettings(opts LoadOptions) (*Settings, error) {
	dotEnv := opts.DotEnv
	if dotEnv == "" {
		dotEnv = ".env"
	}
	if _, err := os.Stat(dotEnv); err == nil {
		if err := godotenv.Load(dotEnv); err != nil {
			return nil, fmt.Errorf("store: load %s: %w", dotEnv, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("store: stat %s: %w", dotEnv, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DUEDECK")
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(".duedeck") // .yaml is implicit
		if override := os.Getenv("DUEDECK_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
		v.AddConfigPath("./")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	} else {
		logging.Logger().Debug("store: config loaded", "file", v.ConfigFileUsed())
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	s, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		SheetID:        strings.TrimSpace(v.GetString(KeySheetID)),
		Class:          v.GetInt(KeyClass),
		SourceURL:      strings.TrimSpace(v.GetString(KeySourceURL)),
		File:           strings.TrimSpace(v.GetString(KeyFile)),
		WebhookURL:     strings.TrimSpace(v.GetString(KeyWebhookURL)),
		FocusThreshold: v.GetFloat64(KeyFocusThreshold),
		CardWidth:      v.GetInt(KeyCardWidth),
		CardGap:        v.GetInt(KeyCardGap),
	}

	var err error
	if s.Classes, err = classMap(v.Get(KeyClasses)); err != nil {
		return nil, fmt.Errorf("store: %s: %w", KeyClasses, err)
	}
	if s.IgnoredColumns, err = intList(v.Get(KeyIgnoredColumns)); err != nil {
		return nil, fmt.Errorf("store: %s: %w", KeyIgnoredColumns, err)
	}

	spans := []struct {
		key string
		dst *time.Duration
	}{
		{KeyRollover, &s.Rollover},
		{KeyCountdownWindow, &s.CountdownWindow},
		{KeyFetchTimeout, &s.FetchTimeout},
		{KeyHighlight, &s.Highlight},
	}
	for _, sp := range spans {
		d, err := timeutil.ParseSpan(v.GetString(sp.key), "")
		if err != nil {
			return nil, fmt.Errorf("store: %s: %w", sp.key, err)
		}
		*sp.dst = d
	}

	s.StatePath, err = homedir.Expand(v.GetString(KeyStatePath))
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", KeyStatePath, err)
	}
	return s, nil
}

func classMap(raw interface{}) (map[int]string, error) {
	m, err := cast.ToStringMapStringE(raw)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(m))
	for k, gid := range m {
		class, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("class %q is not a number", k)
		}
		out[class] = strings.TrimSpace(gid)
	}
	return out, nil
}

// intList accepts a YAML list or a comma separated string from the
// environment.
func intList(raw interface{}) ([]int, error) {
	if s, ok := raw.(string); ok {
		out := []int{}
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			i, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			out = append(out, i)
		}
		return out, nil
	}
	return cast.ToIntSliceE(raw)
}

// ClassIDs returns the configured classes in ascending order.
func (s *Settings) ClassIDs() []int {
	ids := make([]int, 0, len(s.Classes))
	for id := range s.Classes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report config key names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks the settings for values no component can work with.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("store: validate settings: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("store: invalid settings: %s", strings.Join(msgs, "; "))
}
