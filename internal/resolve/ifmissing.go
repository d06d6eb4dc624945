package resolve

import "go.dot.industries/vx/internal/config"

// IfMissingInputs carries the five override layers consulted by the
// resolution order in spec I3, in descending priority.
type IfMissingInputs struct {
	CLIFlag       config.IfMissing // set from --if-missing, empty if absent
	EnvOverride   config.IfMissing // FNOX_IF_MISSING
	BindingField  config.IfMissing // Binding.IfMissing
	TopLevelField config.IfMissing // ResolvedProfile.IfMissing
	EnvDefault    config.IfMissing // FNOX_IF_MISSING_DEFAULT
}

// Resolve applies spec I3's resolution order (first non-empty wins),
// falling back to "warn".
func (in IfMissingInputs) Resolve() config.IfMissing {
	for _, v := range []config.IfMissing{
		in.CLIFlag,
		in.EnvOverride,
		in.BindingField,
		in.TopLevelField,
		in.EnvDefault,
	} {
		if v != "" {
			return v
		}
	}
	return config.IfMissingWarn
}
