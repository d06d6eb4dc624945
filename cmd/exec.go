package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/ferr"
	vxexec "go.dot.industries/vx/internal/exec"
)

func init() {
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec -- <command> [args...]",
	Short: "Resolve all bindings for the active profile and run a command with them injected",
	Long: `Resolves every binding for the active profile and spawns the given
command with the resolved values merged over the current environment.
The child's exit code becomes fnox's exit code; SIGINT/SIGTERM/SIGHUP are
forwarded to the child.`,
	DisableFlagParsing: false,
	Args:               cobra.MinimumNArgs(1),
	RunE:               runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	ctx := context.Background()
	results, err := e.ResolveAll(ctx)
	if err != nil {
		return err
	}

	envVars := make(map[string]string, len(results))
	var missing []string
	for key, rv := range results {
		if !rv.Present {
			if rv.Missing != nil {
				switch rv.Missing.Policy {
				case "error":
					missing = append(missing, key)
				case "warn":
					log.Warn().Str("key", key).Msg("binding has no value")
				}
			}
			continue
		}
		envVars[key] = rv.Value
	}

	if len(missing) > 0 {
		return ferr.New(ferr.MissingSecret, "required secrets have no value: %v", missing)
	}

	log.Debug().Int("count", len(envVars)).Str("profile", e.Profile.Profile).Msg("injecting environment")

	if err := vxexec.Run(ctx, args, envVars); err != nil {
		os.Exit(vxexec.ExitCode(err))
	}

	return nil
}
