package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/config"
	"go.dot.industries/vx/internal/shellstate"
)

func init() {
	rootCmd.AddCommand(hookEnvCmd)
}

var hookEnvCmd = &cobra.Command{
	Use:   "hook-env SHELL",
	Short: "Run the per-prompt diff and print the shell script to eval",
	Long: `Invoked by the shell hook installed by "fnox activate" before every
prompt. Resolves the active profile's bindings, diffs them against the
previous __FNOX_SESSION payload, and prints export/unset statements plus a
fresh __FNOX_SESSION assignment. Any failure (config discovery, engine
construction, or resolving any one binding) is logged as a warning and the
command prints nothing and exits 0, leaving the shell's variables and
__FNOX_SESSION unchanged; a failing binding is not degraded on its own to
its if_missing policy, the whole prompt's update is skipped instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runHookEnv,
}

func runHookEnv(cmd *cobra.Command, args []string) error {
	sh, err := parseShell(args[0])
	if err != nil {
		return err
	}

	prev := shellstate.Decode(os.Getenv(shellstate.EnvVar))

	cwd, err := os.Getwd()
	if err != nil {
		// Can't even stat the cwd: emit nothing rather than crash the shell.
		log.Warn().Err(err).Msg("hook-env: resolving working directory")
		return nil
	}
	profile := activeProfile()

	layered, err := config.Discover(cwd, profile)
	if err != nil {
		log.Warn().Err(err).Msg("hook-env: discovering config")
		return nil
	}

	e, err := newEngine()
	if err != nil {
		log.Warn().Err(err).Msg("hook-env: building engine")
		return nil
	}

	results, err := e.ResolveAll(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("hook-env: resolving bindings")
		return nil
	}

	currHashes := make(map[string]string, len(results))
	values := make(map[string]string, len(results))
	for key, rv := range results {
		if !rv.Present {
			continue
		}
		currHashes[key] = shellstate.Hash(rv.Value)
		values[key] = rv.Value
	}

	diff := shellstate.ComputeDiff(prev, currHashes)

	newSession, err := shellstate.Encode(shellstate.Session{
		Dir:         cwd,
		Profile:     profile,
		ConfigHash:  shellstate.ConfigHash(layered),
		ValueHashes: currHashes,
	})
	if err != nil {
		log.Warn().Err(err).Msg("hook-env: encoding session")
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), shellstate.RenderDiff(sh, diff, values, newSession))

	// FNOX_SHELL_OUTPUT in {normal, debug} enables the human summary line;
	// unset or "none" suppresses it (spec §4.5 step 7 / §6).
	switch os.Getenv("FNOX_SHELL_OUTPUT") {
	case "normal", "debug":
		if len(diff.Add) > 0 || len(diff.Unset) > 0 {
			fmt.Fprintln(os.Stderr, shellstate.HumanDiffLine(diff))
		}
	}

	return nil
}
