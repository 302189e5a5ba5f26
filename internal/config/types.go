package config

import (
	"os"
	"path/filepath"
	"time"
)

// RealtimeArgType is the MINIONS_ARG_TYPE value the host sets while the user
// is still typing.
const RealtimeArgType = "text_realtime"

// Config represents the complete launchkit configuration.
// Every plugin process loads it once at startup.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Output     OutputConfig     `yaml:"output"`
	Timeout    time.Duration    `yaml:"timeout"     env:"LAUNCHKIT_TIMEOUT"     env-default:"10s"`
	ArgType    string           `yaml:"arg_type"    env:"MINIONS_ARG_TYPE"      env-default:"text"`
	PluginsDir string           `yaml:"plugins_dir" env:"LAUNCHKIT_PLUGINS_DIR" env-default:"./plugins"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Emoji      EmojiConfig      `yaml:"emoji"`
	Windows    WindowsConfig    `yaml:"windows"`
}

// LogConfig defines diagnostic logging. Logs always go to stderr.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LAUNCHKIT_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"LAUNCHKIT_LOG_FORMAT" env-default:"json"` // json | text | discard
}

// OutputConfig defines the shape of the results document.
type OutputConfig struct {
	Format string `yaml:"format" env:"LAUNCHKIT_OUTPUT_FORMAT" env-default:"array"` // array | object
}

// DictionaryConfig defines the sdcv plugin settings.
type DictionaryConfig struct {
	Command          string `yaml:"command"            env:"LAUNCHKIT_SDCV_COMMAND"    env-default:"sdcv"`
	Icon             string `yaml:"icon"               env:"LAUNCHKIT_SDCV_ICON"       env-default:"stardict.png"`
	Separator        string `yaml:"separator"          env:"LAUNCHKIT_SDCV_SEPARATOR"  env-default:"; "`
	MaxSubtitleWidth int    `yaml:"max_subtitle_width" env:"LAUNCHKIT_SDCV_MAX_WIDTH"  env-default:"0"`
}

// EmojiConfig defines where the emoji cache lives and where it is refreshed from.
type EmojiConfig struct {
	CachePath string `yaml:"cache_path" env:"LAUNCHKIT_EMOJI_CACHE"`
	SourceURL string `yaml:"source_url" env:"LAUNCHKIT_EMOJI_SOURCE" env-default:"https://raw.githubusercontent.com/muan/emojilib/v2.4.0/emojis.json"`
}

// WindowsConfig defines the window switcher settings.
type WindowsConfig struct {
	Command string `yaml:"command" env:"LAUNCHKIT_WMCTRL_COMMAND" env-default:"wmctrl"`
}

// Realtime reports whether the host invoked the plugin as-you-type.
func (c *Config) Realtime() bool {
	return c.ArgType == RealtimeArgType
}

// EmojiCachePath returns the configured cache path or the per-user default.
func (c *Config) EmojiCachePath() string {
	if c.Emoji.CachePath != "" {
		return c.Emoji.CachePath
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "launchkit", "emoji.db")
}
