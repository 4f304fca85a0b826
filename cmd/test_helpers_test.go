package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// resetCommandState restores flags, config and package globals so each test
// starts from a fresh process-like state.
func resetCommandState(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	viper.Reset()
	*appConfig = *newAppConfig()
	cfgFile = ""
	scanJSON = false
	scanAllowLoopback = false

	commands := append([]*cobra.Command{rootCmd}, rootCmd.Commands()...)
	for _, c := range commands {
		resetFlags(c.PersistentFlags())
		resetFlags(c.Flags())
	}
}

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// executeCommand runs the root command with file logging disabled and
// returns what was written to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetCommandState(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	if !hasFlag(args, "--log-file") {
		args = append(args, "--log-file=")
	}
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		_ = closeLogger()
		logger = zap.NewNop()
		closeLogger = func() error { return nil }
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name || strings.HasPrefix(arg, name+"=") {
			return true
		}
	}
	return false
}
