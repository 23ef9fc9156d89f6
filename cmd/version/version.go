package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/denysvitali/ev-nearby/cmd/root"
)

// Build information. Populated at build-time via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var short bool

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, build date, Go version and the endpoints ev-nearby talks to by default.`,
	Run: func(cmd *cobra.Command, args []string) {
		if short {
			fmt.Println(Version)
			return
		}

		version, commit := Version, Commit
		if info, ok := debug.ReadBuildInfo(); ok {
			if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				version = info.Main.Version
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && commit == "unknown" {
					commit = s.Value
				}
			}
		}

		fmt.Println(root.KeyValueTable([][]string{
			{"ev-nearby", version},
			{"Commit", commit},
			{"Built", Date},
			{"Go version", runtime.Version()},
			{"OS/Arch", runtime.GOOS + "/" + runtime.GOARCH},
		}))
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&short, "short", false, "print only the version")
	root.RootCmd.AddCommand(VersionCmd)
}
