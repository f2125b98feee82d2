package config

import (
	"github.com/spf13/pflag"
)

// ParseArgs parses the command line. Flags set here override the config file.
func ParseArgs(args []string) (*pflag.FlagSet, error) {
	flags := pflag.NewFlagSet("coco_fusion", pflag.ContinueOnError)
	flags.StringP("config", "c", "config.yaml", "config file path")
	flags.StringP("dest", "o", "", "output directory")
	flags.String("empty-images", "", "directory of unlabeled images to add")
	flags.Int64("seed", 0, "split seed (0 = from clock)")
	flags.IntP("workers", "w", 0, "copy workers (0 = number of CPUs)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}
