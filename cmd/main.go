package main

import (
	"fmt"
	"os"
	"time"

	"github.com/evilmagics/coco_fusion/internal/config"
	"github.com/evilmagics/coco_fusion/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	// Generate log filename according to timestamp
	logFilename := fmt.Sprintf("logs_fusion_%s.log", time.Now().Format("2006-01-02_15-04-05"))
	logFile, err := os.OpenFile(logFilename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed create log file")
	}
	defer logFile.Close()

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr}, logFile)).With().Timestamp().Logger()

	flags, err := config.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed parse arguments")
	}
	configPath, _ := flags.GetString("config")

	fs := afero.NewOsFs()
	conf, err := config.LoadConfig(fs, flags)
	if err != nil {
		log.Fatal().Err(err).Str("Path", configPath).Msg("Failed load config")
	}
	log.Info().Str("Path", configPath).Msg("Load config file")

	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("Level", conf.LogLevel).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	log.Debug().Str("Config", conf.String()).Send()

	report, err := services.NewFusion(conf, fs).Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Fusion failed, output is incomplete")
	}

	for _, stage := range []string{services.StageMerge, services.StageAugment, services.StageManifest, services.StageCopy} {
		if n := len(report.Diagnostics.Stage(stage)); n > 0 {
			log.Warn().Str("Stage", stage).Int("Skipped", n).Msg("Items skipped during run")
		}
	}
}
