package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/SkylineCommunications/idpcheck/internal/consts"
	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// Directory types
const (
	DirectoryFile = "file"
	DirectoryHTTP = "http"
)

// Table locates a name column in one of the IDP tables.
type Table struct {
	Table  int
	Column int
}

// IDP describes where the authoritative lists and control parameters live.
type IDP struct {
	Element          string
	Managed          Table
	Unmanaged        Table
	RefreshParameter int
	ManageParameter  int
}

// Directory selects and configures the element directory adapter.
type Directory struct {
	Type    string
	Path    string
	URL     string
	Token   string
	Timeout time.Duration
	Retries int
}

// Config is the run configuration. Defaults match the behaviour of the
// original one-shot script; every key can be overridden from the YAML file
// or an IDPCHECK_* environment variable.
type Config struct {
	OutputDir string

	LogAll                          bool
	IgnorePropertyFalseAndUnmanaged bool
	ListToFix                       bool
	Fix                             bool
	Remanage                        bool

	View          string
	Filter        string
	Property      string
	RemanageDelay time.Duration
	FixListFormat string

	IDP       IDP
	Directory Directory

	// ConfigFile is the file the values were read from, empty when none.
	ConfigFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", consts.DefaultOutputDir())
	v.SetDefault("log_all", false)
	v.SetDefault("ignore_property_false_and_unmanaged", true)
	v.SetDefault("list_to_fix", true)
	v.SetDefault("fix", true)
	v.SetDefault("remanage", true)
	v.SetDefault("view", "")
	v.SetDefault("filter", "")
	v.SetDefault("property", consts.PropertyName)
	v.SetDefault("remanage_delay", consts.DefaultRemanageDelay)
	v.SetDefault("fix_list_format", consts.DefaultFixListFormat)

	v.SetDefault("idp.element", consts.IDPElementName)
	v.SetDefault("idp.managed.table", consts.ManagedTableID)
	v.SetDefault("idp.managed.column", consts.ManagedNameColumn)
	v.SetDefault("idp.unmanaged.table", consts.UnmanagedTableID)
	v.SetDefault("idp.unmanaged.column", consts.UnmanagedNameColumn)
	v.SetDefault("idp.refresh_parameter", consts.RefreshParameterID)
	v.SetDefault("idp.manage_parameter", consts.ManageParameterID)

	v.SetDefault("directory.type", DirectoryFile)
	v.SetDefault("directory.path", consts.DefaultDirectoryFile)
	v.SetDefault("directory.url", "")
	v.SetDefault("directory.token", "")
	v.SetDefault("directory.timeout", consts.DefaultHTTPTimeout)
	v.SetDefault("directory.retries", consts.DefaultHTTPRetries)
}

// LoadEnvFiles loads .env from the working directory if present.
// Variables already set in the environment win.
func LoadEnvFiles() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("could not load .env: %w", err)
	}
	return nil
}

// LoadConfig reads path (when it exists) on top of the defaults and applies
// environment overrides. A missing file is only an error when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(consts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config file could not be read: %w", err)
			}
		} else if required || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file could not be read: %w", err)
		}
	}

	cfg := &Config{
		OutputDir: v.GetString("output_dir"),

		LogAll:                          v.GetBool("log_all"),
		IgnorePropertyFalseAndUnmanaged: v.GetBool("ignore_property_false_and_unmanaged"),
		ListToFix:                       v.GetBool("list_to_fix"),
		Fix:                             v.GetBool("fix"),
		Remanage:                        v.GetBool("remanage"),

		View:          v.GetString("view"),
		Filter:        v.GetString("filter"),
		Property:      v.GetString("property"),
		RemanageDelay: v.GetDuration("remanage_delay"),
		FixListFormat: v.GetString("fix_list_format"),

		IDP: IDP{
			Element:          v.GetString("idp.element"),
			Managed:          Table{Table: v.GetInt("idp.managed.table"), Column: v.GetInt("idp.managed.column")},
			Unmanaged:        Table{Table: v.GetInt("idp.unmanaged.table"), Column: v.GetInt("idp.unmanaged.column")},
			RefreshParameter: v.GetInt("idp.refresh_parameter"),
			ManageParameter:  v.GetInt("idp.manage_parameter"),
		},

		Directory: Directory{
			Type:    strings.ToLower(v.GetString("directory.type")),
			Path:    v.GetString("directory.path"),
			URL:     strings.TrimRight(v.GetString("directory.url"), "/"),
			Token:   v.GetString("directory.token"),
			Timeout: v.GetDuration("directory.timeout"),
			Retries: v.GetInt("directory.retries"),
		},

		ConfigFile: v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values a run cannot do without.
func (c *Config) Validate() error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if c.Property == "" {
		errs = append(errs, errors.New("property is required"))
	}
	if c.FixListFormat == "" {
		errs = append(errs, errors.New("fix_list_format is required"))
	}
	if c.RemanageDelay < 0 {
		errs = append(errs, errors.New("remanage_delay must not be negative"))
	}
	if c.IDP.Element == "" {
		errs = append(errs, errors.New("idp.element is required"))
	}
	for name, t := range map[string]Table{"idp.managed": c.IDP.Managed, "idp.unmanaged": c.IDP.Unmanaged} {
		if t.Table <= 0 || t.Column <= 0 {
			errs = append(errs, fmt.Errorf("%s table and column must be positive", name))
		}
	}
	if c.IDP.RefreshParameter <= 0 || c.IDP.ManageParameter <= 0 {
		errs = append(errs, errors.New("idp parameters must be positive"))
	}

	switch c.Directory.Type {
	case DirectoryFile:
		if c.Directory.Path == "" {
			errs = append(errs, errors.New("directory.path is required for the file directory"))
		}
	case DirectoryHTTP:
		if c.Directory.URL == "" {
			errs = append(errs, errors.New("directory.url is required for the http directory"))
		}
		if c.Directory.Timeout <= 0 {
			errs = append(errs, errors.New("directory.timeout must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown directory type %q", c.Directory.Type))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ManagedTable returns the reference of the managed list.
func (c *Config) ManagedTable() core.TableRef {
	return core.TableRef{Element: c.IDP.Element, Table: c.IDP.Managed.Table, Column: c.IDP.Managed.Column}
}

// UnmanagedTable returns the reference of the unmanaged list.
func (c *Config) UnmanagedTable() core.TableRef {
	return core.TableRef{Element: c.IDP.Element, Table: c.IDP.Unmanaged.Table, Column: c.IDP.Unmanaged.Column}
}

// RefreshButton returns the parameter that refreshes the IDP lists.
func (c *Config) RefreshButton() core.ParameterRef {
	return core.ParameterRef{Element: c.IDP.Element, Parameter: c.IDP.RefreshParameter}
}

// ManageButton returns the parameter that takes a pipe separated list of
// element ids to manage.
func (c *Config) ManageButton() core.ParameterRef {
	return core.ParameterRef{Element: c.IDP.Element, Parameter: c.IDP.ManageParameter}
}
