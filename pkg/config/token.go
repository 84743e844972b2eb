package config

import (
	"fmt"
	"strings"
)

const minTokenSecretLength = 32

// TokenConfig configures signing of session tokens.
type TokenConfig struct {
	Secret string `koanf:"secret"`
	Issuer string `koanf:"issuer"`
}

// String returns a string representation of the TokenConfig. The secret is never printed.
func (c *TokenConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Token ---\n")
	b.WriteString("  secret: ****\n")
	b.WriteString(fmt.Sprintf("  issuer: %s\n", c.Issuer))
	return b.String()
}

func (c *TokenConfig) Validate() error {
	if len(c.Secret) < minTokenSecretLength {
		return fmt.Errorf("token secret must be at least %d characters long", minTokenSecretLength)
	}
	if c.Issuer == "" {
		return fmt.Errorf("token issuer cannot be empty")
	}
	return nil
}
