package resolve

import (
	"testing"

	"go.dot.industries/vx/internal/config"
)

func TestIfMissingResolveOrder(t *testing.T) {
	cases := []struct {
		name string
		in   IfMissingInputs
		want config.IfMissing
	}{
		{
			name: "cli flag wins over everything",
			in: IfMissingInputs{
				CLIFlag:       config.IfMissingIgnore,
				EnvOverride:   config.IfMissingError,
				BindingField:  config.IfMissingError,
				TopLevelField: config.IfMissingError,
				EnvDefault:    config.IfMissingError,
			},
			want: config.IfMissingIgnore,
		},
		{
			name: "env override beats binding field",
			in: IfMissingInputs{
				EnvOverride:  config.IfMissingWarn,
				BindingField: config.IfMissingError,
			},
			want: config.IfMissingWarn,
		},
		{
			name: "binding field beats top-level field",
			in: IfMissingInputs{
				BindingField:  config.IfMissingError,
				TopLevelField: config.IfMissingIgnore,
			},
			want: config.IfMissingError,
		},
		{
			name: "top-level field beats env default",
			in: IfMissingInputs{
				TopLevelField: config.IfMissingIgnore,
				EnvDefault:    config.IfMissingError,
			},
			want: config.IfMissingIgnore,
		},
		{
			name: "env default used when nothing else set",
			in:   IfMissingInputs{EnvDefault: config.IfMissingError},
			want: config.IfMissingError,
		},
		{
			name: "falls back to warn",
			in:   IfMissingInputs{},
			want: config.IfMissingWarn,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Resolve(); got != tc.want {
				t.Errorf("Resolve() = %q, want %q", got, tc.want)
			}
		})
	}
}
