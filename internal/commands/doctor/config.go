package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/lightbox/internal/core/config"
)

// ConfigCheck validates the configuration file and the markdown theme it
// names.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{
		config:     cfg,
		configPath: configPath,
	}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config loaded",
			Status: StatusFail,
			Detail: "configuration not loaded",
		})
		return result
	}

	if _, err := os.Stat(c.configPath); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config file",
			Status: StatusWarn,
			Detail: "not found, using defaults",
		})
	}

	if err := c.config.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				label := fe.Field
				if label == "" {
					label = "validation"
				}
				result.Items = append(result.Items, CheckItem{
					Label:  label,
					Status: StatusFail,
					Detail: fe.Err.Error(),
				})
			}
		} else {
			result.Items = append(result.Items, CheckItem{
				Label:  "validation",
				Status: StatusFail,
				Detail: err.Error(),
			})
		}
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config valid",
			Status: StatusPass,
		})
	}

	if _, err := glamour.NewTermRenderer(glamour.WithStandardStyle(c.config.Theme.Markdown)); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Markdown theme",
			Status: StatusWarn,
			Detail: c.config.Theme.Markdown + ": " + err.Error() + " (content is shown unstyled)",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "Markdown theme",
			Status: StatusPass,
			Detail: c.config.Theme.Markdown,
		})
	}

	return result
}
