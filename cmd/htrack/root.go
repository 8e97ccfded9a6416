package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "htrack",
	Short: "Drive an h-adaptivity tracker over a mixed element mesh",
	Long: `htrack builds the refinement forest of a mesh made of lines, triangles,
quadrangles, tetrahedra, hexahedra, prisms and pyramids, applies split and
group requests while keeping adjacent elements within one level of each other,
and reports the resulting leaves and their coordinates.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warning",
		"Log level (trace, debug, info, warning, error)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
