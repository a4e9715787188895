package doctor

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/shopcart/internal/core/config"
)

// configSections are reported in this order; a field belongs to the section
// named by its first path segment.
var configSections = []string{"config_file", "data_dir", "api", "server", "tui"}

// ConfigCheck validates the configuration and reports one item per section.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{config: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.Items = append(result.Items, CheckItem{Label: "Loaded", Status: StatusFail, Detail: "configuration not loaded"})
		return result
	}

	result.Items = append(result.Items, c.fileItem())

	problems := map[string][]string{}
	var fieldErrs criterio.FieldErrors
	if err := c.config.ValidateDeep(c.configPath); errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			section := sectionOf(fe.Field)
			problems[section] = append(problems[section], fe.Field+": "+fe.Err.Error())
		}
	} else if err != nil {
		problems[""] = append(problems[""], err.Error())
	}

	warnings := map[string][]string{}
	for _, w := range c.config.Warnings() {
		msg := w.Message
		if w.Item != "" {
			msg = w.Item + ": " + msg
		}
		warnings[sectionOf(w.Category)] = append(warnings[sectionOf(w.Category)], msg)
	}

	for _, section := range append(configSections, "") {
		label := section
		if label == "" {
			label = "other"
		}

		switch {
		case len(problems[section]) > 0:
			result.Items = append(result.Items, CheckItem{Label: label, Status: StatusFail, Detail: strings.Join(problems[section], "; ")})
		case len(warnings[section]) > 0:
			result.Items = append(result.Items, CheckItem{Label: label, Status: StatusWarn, Detail: strings.Join(warnings[section], "; ")})
		case section == "api":
			result.Items = append(result.Items, CheckItem{Label: label, Status: StatusPass, Detail: c.config.API.BaseURL})
		case section == "server" || section == "tui":
			result.Items = append(result.Items, CheckItem{Label: label, Status: StatusPass})
		}
	}

	return result
}

// fileItem reports whether a config file is in use. Running on defaults is
// fine, so a missing file passes.
func (c *ConfigCheck) fileItem() CheckItem {
	item := CheckItem{Label: "File", Status: StatusPass, Detail: c.configPath}
	switch _, err := os.Stat(c.configPath); {
	case c.configPath == "":
		item.Detail = "using defaults"
	case os.IsNotExist(err):
		item.Detail = c.configPath + " not found, using defaults"
	}
	return item
}

func sectionOf(field string) string {
	head, _, _ := strings.Cut(strings.ToLower(field), ".")
	for _, s := range configSections {
		if head == s {
			return s
		}
	}
	return ""
}
