package nicehash

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Credentials identify an API key. Secret is redacted from String and slog
// output.
type Credentials struct {
	Key            string `validate:"required"`
	Secret         string `validate:"required"`
	OrganizationID string `validate:"required"`
}

// Validate returns a *ConfigError naming the first unusable field.
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return &ConfigError{Field: verrs[0].Field(), Reason: "is required"}
		}
		return &ConfigError{Field: "Credentials", Reason: err.Error()}
	}

	// a NUL would shift every field of the canonical message
	fields := []struct{ name, value string }{
		{"Key", c.Key},
		{"Secret", c.Secret},
		{"OrganizationID", c.OrganizationID},
	}
	for _, f := range fields {
		if strings.ContainsRune(f.value, 0) {
			return &ConfigError{Field: f.name, Reason: "contains a NUL byte"}
		}
	}

	return nil
}

func (c Credentials) String() string {
	return "Credentials{Key:" + c.Key + " OrganizationID:" + c.OrganizationID + " Secret:[REDACTED]}"
}

func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("key", c.Key),
		slog.String("organizationId", c.OrganizationID),
	)
}
