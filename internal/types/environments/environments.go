package environments

import "strings"

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Staging     Environment = "staging"
	Test        Environment = "test"
)

// Parse maps APP_ENV to an Environment. Unknown or empty values fall back
// to Development.
func Parse(s string) Environment {
	switch env := Environment(strings.ToLower(strings.TrimSpace(s))); env {
	case Production, Staging, Test:
		return env
	default:
		return Development
	}
}

// IsDeployed reports whether the process serves real funds or a shared testnet.
func (e Environment) IsDeployed() bool {
	return e == Production || e == Staging
}
