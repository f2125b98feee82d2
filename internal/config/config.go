package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrNoSources = errors.New("no source dataset configured")

type Source struct {
	Annotations string              `mapstructure:"annotations" json:"annotations"`
	Images      string              `mapstructure:"images" json:"images"`
	ClassSync   map[string][]string `mapstructure:"class_name_sync" json:"class_name_sync"`
}

func (s Source) ClassNameSync() utils.ClassNameSync {
	return utils.NewClassNameSync(s.ClassSync)
}

type Config struct {
	Dest        string             `mapstructure:"dest" json:"dest"`
	EmptyImages string             `mapstructure:"empty_images" json:"empty_images"`
	ImageDirs   []string           `mapstructure:"image_dirs" json:"image_dirs"`
	Split       map[string]float64 `mapstructure:"split" json:"split"`
	Seed        int64              `mapstructure:"seed" json:"seed"`
	Workers     int                `mapstructure:"workers" json:"workers"`
	LogLevel    string             `mapstructure:"log_level" json:"log_level"`
	Sources     []Source           `mapstructure:"sources" json:"sources"`

	Ratios Ratios `mapstructure:"-" json:"ratios"`
}

func (c Config) String() string {
	j, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(j)
}

// SearchDirs is the ordered list of directories searched for image files:
// image_dirs, then every source image directory, then empty_images.
func (c Config) SearchDirs() []string {
	var (
		dirs = make([]string, 0, len(c.ImageDirs)+len(c.Sources)+1)
		seen = make(map[string]bool)
	)
	add := func(dir string) {
		if dir != "" && !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, d := range c.ImageDirs {
		add(d)
	}
	for _, s := range c.Sources {
		add(s.Images)
	}
	add(c.EmptyImages)
	return dirs
}

func (c *Config) Validate() (err error) {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	for i, s := range c.Sources {
		if s.Annotations == "" {
			return fmt.Errorf("source %d: annotations path is empty", i)
		}
	}
	if c.Dest == "" {
		return errors.New("dest is empty")
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}

	c.Ratios, err = ParseRatios(c.Split)
	return err
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"dest":         "dest",
	"empty-images": "empty_images",
	"seed":         "seed",
	"workers":      "workers",
	"log-level":    "log_level",
}

// LoadConfig reads the config file named by the "config" flag from fs.
// Precedence: flags, then FUSION_* environment variables, then the file.
func LoadConfig(fs afero.Fs, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetDefault("log_level", "info")
	v.SetEnvPrefix("FUSION")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}
