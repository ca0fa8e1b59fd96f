package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cmsflow-io/strapi/internal/constants"
	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// Errors surfaced by config handling.
var (
	ErrServerRequired    = errors.New("server URL is required (use --server, STRAPI_SERVER, or 'strapi config set server <url>')")
	ErrUnknownConfigKey  = errors.New("unknown config key")
	ErrValueRequired     = errors.New("value is required")
	ErrContentTypeExists = errors.New("content type already registered")
)

// SearchSettings configures the search subsystem for the CLI.
type SearchSettings struct {
	Provider      string                  `yaml:"provider,omitempty"`
	ApplicationID string                  `yaml:"applicationId,omitempty"`
	APIKey        string                  `yaml:"apiKey,omitempty"`
	Prefix        string                  `yaml:"prefix,omitempty"`
	ContentTypes  []SearchContentTypeSpec `yaml:"contentTypes,omitempty"`
}

// SearchContentTypeSpec is the persisted form of a search content-type
// configuration.
type SearchContentTypeSpec struct {
	Name           string   `yaml:"name"`
	Index          string   `yaml:"index,omitempty"`
	IDPrefix       string   `yaml:"idPrefix,omitempty"`
	Fields         []string `yaml:"fields,omitempty"`
	ExcludedFields []string `yaml:"excludedFields,omitempty"`
}

// Config is the persisted CLI configuration.
type Config struct {
	Server       string                   `yaml:"server,omitempty"`
	Prefix       string                   `yaml:"prefix,omitempty"`
	Token        string                   `yaml:"token,omitempty"`
	ContentTypes []strapi.ContentTypeSpec `yaml:"contentTypes,omitempty"`
	Search       SearchSettings           `yaml:"search,omitempty"`
}

func configFilePath() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".strapi-cli")

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

func loadConfig() *Config {
	config := &Config{}

	file, err := configFilePath()
	if err != nil {
		return config
	}

	data, err := os.ReadFile(file) // #nosec G304 -- path derived from the user's home dir
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func saveConfigStruct(config *Config) error {
	file, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(file, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "View and modify the persisted CLI configuration",
	}

	cmd.AddCommand(newConfigViewCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigAddTypeCommand())

	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token != "" {
				config.Token = "***"
			}

			if config.Search.APIKey != "" {
				config.Search.APIKey = "***"
			}

			return yaml.NewEncoder(os.Stdout).Encode(config)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set server, prefix, or token in the persisted configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if value == "" {
				return ErrValueRequired
			}

			config := loadConfig()

			switch key {
			case "server":
				config.Server = value
			case "prefix":
				config.Prefix = value
			case "token":
				config.Token = value
			default:
				return fmt.Errorf("%w: %q", ErrUnknownConfigKey, key)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			cmd.Printf("Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			switch key {
			case "server":
				config.Server = ""
			case "prefix":
				config.Prefix = ""
			case "token":
				config.Token = ""
			default:
				return fmt.Errorf("%w: %q", ErrUnknownConfigKey, key)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			cmd.Printf("Unset %s\n", key)

			return nil
		},
	}
}

func newConfigAddTypeCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "add-type <name>",
		Short: "Register a content type",
		Long:  "Register a content type so entry commands can address it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			config := loadConfig()

			for _, spec := range config.ContentTypes {
				if spec.Name == name {
					return fmt.Errorf("%w: %q", ErrContentTypeExists, name)
				}
			}

			config.ContentTypes = append(config.ContentTypes, strapi.ContentTypeSpec{Name: name, Path: path})

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			cmd.Printf("Registered content type %q\n", name)

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "request path override (marks a single type)")

	return cmd
}
