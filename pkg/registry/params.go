package registry

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds engine tuning applied to every instance the registry opens.
// Parsed from the host config's engine block using mapstructure.
type Params struct {
	// BusyTimeoutMS is how long a statement waits on a locked instance
	// before failing. Zero keeps the driver default.
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms"`

	// CacheSizeKB caps the page cache per instance. Zero keeps the engine
	// default.
	CacheSizeKB int `mapstructure:"cache_size_kb"`

	// ForeignKeys enables referential integrity enforcement.
	ForeignKeys bool `mapstructure:"foreign_keys"`
}

// ParseParams decodes a raw params map. Unknown keys are rejected so config
// typos fail loudly instead of silently tuning nothing.
func ParseParams(raw map[string]any) (Params, error) {
	var p Params
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &p,
		ErrorUnused: true,
	})
	if err != nil {
		return Params{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Params{}, fmt.Errorf("invalid engine params: %w", err)
	}
	return p, nil
}

// pragmas translates the params into the statements applied at instance
// open. A negative cache_size is the engine's convention for a KB unit.
func (p Params) pragmas() []string {
	var stmts []string
	if p.BusyTimeoutMS > 0 {
		stmts = append(stmts, fmt.Sprintf("PRAGMA busy_timeout = %d", p.BusyTimeoutMS))
	}
	if p.CacheSizeKB > 0 {
		stmts = append(stmts, fmt.Sprintf("PRAGMA cache_size = -%d", p.CacheSizeKB))
	}
	if p.ForeignKeys {
		stmts = append(stmts, "PRAGMA foreign_keys = ON")
	}
	return stmts
}
