package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Validate checks the fields the service cannot start without. Every
// violation is reported, not just the first.
func (c *AppConfig) Validate() error {
	var problems []string

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	if !c.Bridge.MinAmount.IsPositive() {
		problems = append(problems, "AppConfig.Bridge.MinAmount: must be positive")
	}
	if c.Bridge.BalancePollInterval <= 0 || c.Bridge.BalancePollTimeout < c.Bridge.BalancePollInterval {
		problems = append(problems, "AppConfig.Bridge: poll timeout must cover at least one poll interval")
	}
	if c.History.Backend == "postgres" && c.Postgres.Host == "" {
		problems = append(problems, "AppConfig.Postgres.Host: required by the postgres history backend")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
