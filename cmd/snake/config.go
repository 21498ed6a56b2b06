package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/snake-env/internal/config"
)

var flagEffective bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default configuration",
	Long: `Print the embedded default configuration as YAML. Save it to
~/.snake-env/configs/snake.yaml or ./configs/snake.yaml to customize.

With --effective, prints the configuration after the search order
(--config, user file, project file, defaults) has been applied.

Examples:
  snake config > ~/.snake-env/configs/snake.yaml
  snake config --effective --config ./my-snake.yaml`,
	Run: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagEffective, "effective", false, "Print the loaded configuration instead of the defaults")
}

func runConfig(_ *cobra.Command, _ []string) {
	if !flagEffective {
		os.Stdout.Write(config.DefaultYAML())
		return
	}

	cfg, err := config.LoadSnake(flagConfig)
	if err != nil {
		fatalf("%v", err)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		fatalf("%v", err)
	}
	enc.Close()
}
