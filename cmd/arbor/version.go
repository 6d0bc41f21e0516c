// Version command prints the arbor release.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stemhq/arbor/pkg/arbor"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the arbor version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arbor %s\n", arbor.Version)
	},
}
