package core

import (
	"fmt"
	"strings"
)

type PlatformConfig struct {
	Endpoint           string `koanf:"endpoint" mapstructure:"endpoint"`
	AccessKeyID        string `koanf:"access_key_id" mapstructure:"access_key_id"`
	AccessKey          string `koanf:"access_key" mapstructure:"access_key"`
	InsecureSkipVerify bool   `koanf:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	Debug              bool   `koanf:"debug" mapstructure:"debug"`
}

type ProvisioningConfig struct {
	CountMonths    int `koanf:"count_months" mapstructure:"count_months"`
	PasswordLength int `koanf:"password_length" mapstructure:"password_length"`
}

type Config struct {
	ServiceName  string             `koanf:"service_name" mapstructure:"service_name"`
	Platform     PlatformConfig     `koanf:"platform" mapstructure:"platform"`
	Provisioning ProvisioningConfig `koanf:"provisioning" mapstructure:"provisioning"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "provision",
		Provisioning: ProvisioningConfig{
			CountMonths:    1,
			PasswordLength: 12,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Provisioning.CountMonths < 0 {
		return fmt.Errorf("core: provisioning.count_months must not be negative")
	}
	if c.Provisioning.PasswordLength < 0 {
		return fmt.Errorf("core: provisioning.password_length must not be negative")
	}
	return nil
}

// Credentials builds a platform credentials value from the configured section.
func (c Config) Credentials() Credentials {
	return Credentials{
		Endpoint:           strings.TrimSpace(c.Platform.Endpoint),
		AccessKeyID:        strings.TrimSpace(c.Platform.AccessKeyID),
		AccessKey:          strings.TrimSpace(c.Platform.AccessKey),
		InsecureSkipVerify: c.Platform.InsecureSkipVerify,
		Debug:              c.Platform.Debug,
	}
}
