package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd is the artmatrix command; it only prints help on its own
var rootCmd = &cobra.Command{
	Use:   "artmatrix",
	Short: "artmatrix - Grid-addressed art catalogue browser",
	Long: `artmatrix browses a catalogue of art works laid out on a grid of parent
cells, each opening a 4x4 sub-grid of detail entries.

Entries live in a key/value document store (Redis or SQLite). Keys are
grid addresses such as R2C5 (a parent cell) or R2C5-r3c1 (one entry),
and older padded spellings like R02C05-r03c01 are still found.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the command tree. Subcommands register themselves in init.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo records build metadata shown by --version
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&storeFlags.configPath, "config", "", "Path to artmatrix.yml (default ./artmatrix.yml if present)")
	flags.StringVar(&storeFlags.driver, "store", "", "Store driver: redis or sqlite")
	flags.StringVar(&storeFlags.redisURL, "redis-url", "", "Redis URL (redis driver)")
	flags.StringVar(&storeFlags.sqlitePath, "sqlite-path", "", "Database file (sqlite driver)")
	flags.StringVar(&storeFlags.collection, "collection", "", "Document collection name")
}
