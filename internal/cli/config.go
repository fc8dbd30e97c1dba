package cli

import (
	"fmt"

	"github.com/ppiankov/pgreport/internal/config"
	"github.com/ppiankov/pgreport/internal/thresholds"
	"github.com/spf13/cobra"
)

var (
	// Config command flags
	configWrite      bool
	configForce      bool
	configPath       string
	configThresholds bool
)

// configCmd prints or writes sample configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print a sample configuration file",
	Long: `Config prints a commented sample pgreport.yaml with every key at its default.

With --write the sample is saved to the user config location instead
($XDG_CONFIG_HOME/pgreport/pgreport.yaml or ~/pgreport.yaml). With
--thresholds a threshold override document is produced instead.

Example:
  pgreport config > pgreport.yaml
  pgreport config --write
  pgreport config --thresholds > .pgreport-thresholds.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false,
		"write the sample to the user config location")
	configCmd.Flags().BoolVar(&configForce, "force", false,
		"overwrite an existing file with --write")
	configCmd.Flags().StringVar(&configPath, "path", "",
		"destination for --write (default: user config location)")
	configCmd.Flags().BoolVar(&configThresholds, "thresholds", false,
		"print a threshold override document instead")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if configThresholds {
		data, err := thresholds.Sample()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	if !configWrite {
		_, err := fmt.Fprint(out, config.GenerateSampleConfig())
		return err
	}

	path := configPath
	if path == "" {
		path = config.ConfigPath()
	}
	if err := config.WriteSample(path, configForce); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Config written to %s\n", path)
	return err
}
