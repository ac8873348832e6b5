package lookup

// Value is one entry of a value domain: a canonical string plus aliases that
// resolve to the same index.
type Value struct {
	value   string
	aliases []string
}

func newValue(s string) *Value {
	return &Value{value: s}
}

// String returns the canonical value.
func (v *Value) String() string {
	return v.value
}

// Aliases returns the alias strings in registration order.
func (v *Value) Aliases() []string {
	return v.aliases
}

// AddAlias attaches a secondary spelling.
func (v *Value) AddAlias(alias string) {
	v.aliases = append(v.aliases, alias)
}

// Matches reports whether s is the canonical value or one of its aliases.
func (v *Value) Matches(s string) bool {
	if v.value == s {
		return true
	}
	for _, a := range v.aliases {
		if a == s {
			return true
		}
	}
	return false
}
