package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vault-hygiene/pkg/vault"
)

var (
	flagAddress string
	flagToken   string
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "vault-hygiene",
	Short: "Operational hygiene tools for HashiCorp Vault clusters",
	Long: `Back up KV v1 secret trees to local JSON files, delete secret trees once
a verified backup exists, and rewrite service policies to replace secret/
grants with scoped aws_dmz credential access.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&flagAddress, "address", "a", "", "Vault server address (or set VAULT_ADDR)")
	rootCmd.PersistentFlags().StringVarP(&flagToken, "token", "t", "", "Vault token (or set VAULT_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Optional YAML config file with defaults")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(rewriteCmd)
}

// fileConfig mirrors the optional YAML config file. Flags and
// environment variables take precedence over its values.
type fileConfig struct {
	Address   string `yaml:"address"`
	Token     string `yaml:"token"`
	Mount     string `yaml:"mount"`
	BackupDir string `yaml:"backup_dir"`
	PolicyDir string `yaml:"policy_dir"`
	DryRun    bool   `yaml:"dry_run"`
}

func loadFileConfig() (*fileConfig, error) {
	cfg := &fileConfig{}
	if flagConfig == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// resolveConfig builds the connection config: flag over environment
// over config file. Missing address or token is fatal.
func resolveConfig() (*fileConfig, vault.Config, error) {
	file, err := loadFileConfig()
	if err != nil {
		return nil, vault.Config{}, err
	}

	cfg := vault.Config{
		Address: getEnvOrFlag(flagAddress, "VAULT_ADDR"),
		Token:   getEnvOrFlag(flagToken, "VAULT_TOKEN"),
	}
	if cfg.Address == "" {
		cfg.Address = file.Address
	}
	if cfg.Token == "" {
		cfg.Token = file.Token
	}

	if cfg.Address == "" || cfg.Token == "" {
		return nil, vault.Config{}, fmt.Errorf("vault address and token are required")
	}
	return file, cfg, nil
}

func connect(cfg vault.Config) (*vault.Client, error) {
	log.Infof("connecting to Vault at %s", cfg.Address)

	client, err := vault.NewClient(cfg.Address, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if err := client.Ping(); err != nil {
		return nil, err
	}
	return client, nil
}

func getEnvOrFlag(flag, envVar string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envVar)
}
