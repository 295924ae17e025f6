package setup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/devops-foundry/gitgovern/internal/protection"
)

const (
	governanceConfigurationTypeConstant     = "json"
	mapstructureTagNameConstant             = "mapstructure"
	configurationReadErrorTemplateConstant  = "failed to read governance configuration: %w"
	configurationParseErrorTemplateConstant = "failed to parse governance configuration: %w"
	missingProtectedBranchMessageConstant   = "governance configuration must name branchProtection.branch"
	environmentMissingNameMessageConstant   = "every configured environment must carry a name"
)

// EnvironmentSettings describes one required deployment environment.
type EnvironmentSettings struct {
	Name             string   `mapstructure:"name" json:"name"`
	RequiresApproval bool     `mapstructure:"requiresApproval" json:"requiresApproval"`
	Approvers        []string `mapstructure:"approvers" json:"approvers"`
}

// GovernanceConfiguration is the repository governance target state.
type GovernanceConfiguration struct {
	BranchProtection protection.ProtectionSettings `mapstructure:"branchProtection" json:"branchProtection"`
	Secrets          []string                      `mapstructure:"secrets" json:"secrets"`
	Environments     []EnvironmentSettings         `mapstructure:"environments" json:"environments"`
}

// EnvironmentNames lists the configured environment names in declaration order.
func (configuration GovernanceConfiguration) EnvironmentNames() []string {
	environmentNames := make([]string, 0, len(configuration.Environments))
	for _, environmentSettings := range configuration.Environments {
		environmentNames = append(environmentNames, environmentSettings.Name)
	}
	return environmentNames
}

// LoadGovernanceConfiguration reads and validates a governance configuration file.
func LoadGovernanceConfiguration(configurationFilePath string) (GovernanceConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigFile(configurationFilePath)
	viperInstance.SetConfigType(governanceConfigurationTypeConstant)

	if readError := viperInstance.ReadInConfig(); readError != nil {
		return GovernanceConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
	}

	var configuration GovernanceConfiguration
	decoder, decoderCreationError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: mapstructureTagNameConstant,
		Result:  &configuration,
	})
	if decoderCreationError != nil {
		return GovernanceConfiguration{}, fmt.Errorf(configurationParseErrorTemplateConstant, decoderCreationError)
	}
	if decodeError := decoder.Decode(viperInstance.AllSettings()); decodeError != nil {
		return GovernanceConfiguration{}, fmt.Errorf(configurationParseErrorTemplateConstant, decodeError)
	}

	if validationError := validateGovernanceConfiguration(configuration); validationError != nil {
		return GovernanceConfiguration{}, validationError
	}

	return configuration, nil
}

func validateGovernanceConfiguration(configuration GovernanceConfiguration) error {
	if len(strings.TrimSpace(configuration.BranchProtection.Branch)) == 0 {
		return errors.New(missingProtectedBranchMessageConstant)
	}
	for _, environmentSettings := range configuration.Environments {
		if len(strings.TrimSpace(environmentSettings.Name)) == 0 {
			return errors.New(environmentMissingNameMessageConstant)
		}
	}
	return nil
}
