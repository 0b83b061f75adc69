package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/halvard/ansuz/internal/locale"
)

// Rename modes. Exactly these three are valid; an unknown value is a
// load-time error, never silently coerced.
const (
	RenameModeDialog   = "dialog"
	RenameModeAI       = "ai"
	RenameModeTemplate = "template"
)

// Local file dispositions after a successful upload.
const (
	DispositionKeep   = "nothing"
	DispositionDelete = "delete"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// DefaultPrompt is the naming instruction sent to the vision model.
const DefaultPrompt = `Analyze this image and generate a filename.
Rules:
1. Identify 2-3 lowercase English words describing the content, ordered from broad category to specific detail.
2. Join them with underscores.
3. ALWAYS append the fixed suffix "_{datetime}" at the end.
4. Existing images in this document: {existing_images}. Consider these names to maintain naming consistency.
Output ONLY the final string (e.g., "broad_specific_detail_{datetime}").`

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Auth     AuthConfig        `yaml:"auth"`
	Vault    VaultConfig       `yaml:"vault"`
	WebDAV   WebDAVConfig      `yaml:"webdav"`
	Rename   RenameConfig      `yaml:"rename"`
	Vision   VisionConfig      `yaml:"vision"`
	Local    LocalConfig       `yaml:"local"`
	Language string            `yaml:"language"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Rename.Validate(); err != nil {
		return err
	}
	if err := c.Local.Validate(); err != nil {
		return err
	}
	c.Language = locale.Normalize(c.Language)
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Debug    bool       `yaml:"debug"`
	HTTP     HTTPConfig `yaml:"http"`
}

// EffectiveLogLevel returns the configured level, forced down to debug
// when the debug flag is on.
func (c *ApplicationConfig) EffectiveLogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return c.LogLevel
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds API authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// VaultConfig holds the Markdown vault location and the optional inbox
// drop directory watched for new images.
type VaultConfig struct {
	Path  string      `yaml:"path"`
	Inbox InboxConfig `yaml:"inbox"`
}

// InboxConfig configures the watched drop directory. Dir is relative to
// the vault root; empty disables the watcher. Note, when set, names the
// note new upload links are appended to.
type InboxConfig struct {
	Dir  string `yaml:"dir"`
	Note string `yaml:"note"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// WebDAVConfig holds the remote store connection settings.
type WebDAVConfig struct {
	URL          string `yaml:"url"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Path         string `yaml:"path"`
	PublicPrefix string `yaml:"public_prefix"`
}

// RenameConfig selects how uploaded images are named. Mode applies to
// single uploads, BatchMode to batch runs.
type RenameConfig struct {
	Mode      string `yaml:"mode"`
	BatchMode string `yaml:"batch_mode"`
	Template  string `yaml:"template"`
}

// Validate validates the rename configuration.
func (c *RenameConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required,
			validation.In(RenameModeDialog, RenameModeAI, RenameModeTemplate)),
		validation.Field(&c.BatchMode, validation.Required,
			validation.In(RenameModeDialog, RenameModeAI, RenameModeTemplate)),
		validation.Field(&c.Template, validation.Required),
	)
}

// VisionConfig holds the naming-service settings.
type VisionConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	Prompt   string `yaml:"prompt"`
	Compress bool   `yaml:"compress"`
}

// Configured reports whether the naming service can be called at all.
func (c *VisionConfig) Configured() bool {
	return c.APIKey != "" && c.Endpoint != ""
}

// LocalConfig controls what happens to vault-local image files after a
// successful upload, and whether the local-image upload surface is
// registered.
type LocalConfig struct {
	Disposition string `yaml:"disposition"`
	ContextMenu bool   `yaml:"context_menu"`
}

// Validate validates the local-file configuration.
func (c *LocalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Disposition, validation.Required,
			validation.In(DispositionKeep, DispositionDelete)),
	)
}

// NewDefaultConfig returns a new Config with the stock defaults.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		WebDAV: WebDAVConfig{
			Path:         "/images",
			PublicPrefix: "https://your-cdn.com/images",
		},
		Rename: RenameConfig{
			Mode:      RenameModeDialog,
			BatchMode: RenameModeTemplate,
			Template:  "image-{datetime}",
		},
		Vision: VisionConfig{
			Endpoint: "https://api.openai.com",
			Model:    "gpt-4o-mini",
			Prompt:   DefaultPrompt,
			Compress: true,
		},
		Local: LocalConfig{
			Disposition: DispositionKeep,
			ContextMenu: true,
		},
		Language: locale.LanguageChinese,
	}
}
