/*
Package log is the project-wide logger, a thin configuration layer over
zerolog (https://github.com/rs/zerolog).

Configuration is read from a toml file named "simlog" in the working
directory, or from the path in the CSIM_LOGCONFIG environment variable.
All fields are optional:

 # default level for all modules; debug/info/warn/error/fatal/panic
 level = "info"

 # output formatter; console, console_no_color or json
 formatter = "console"

 # print source file and line
 caller = false

 # per-module override
 [scheduler]
 level = "debug"
*/
package log

import (
	"errors"
	"os"
	"strings"
	"sync"

	colorable "github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var (
	baseLogger  = zerolog.New(os.Stderr)
	baseLevel   = zerolog.InfoLevel
	logInitLock sync.Mutex
	isLogInit   = false
	viperConf   = viper.New()
)

const (
	confFilePathKey     = "LOGCONFIG"
	confEnvPrefix       = "CSIM"
	defaultConfFileName = "simlog"
)

// Logger carries a configured zerolog logger for one module.
type Logger struct {
	*zerolog.Logger
	name  string
	level zerolog.Level
}

func loadConfigFile() {
	viperConf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperConf.SetEnvPrefix(confEnvPrefix)
	viperConf.AutomaticEnv()

	viperConf.SetConfigType("toml")
	viperConf.SetConfigName(defaultConfFileName)
	viperConf.AddConfigPath(".")

	if confFilePath := viperConf.GetString(confFilePathKey); confFilePath != "" {
		viperConf.SetConfigFile(confFilePath)
	}

	if err := viperConf.ReadInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			// defaults are fine
		default:
			baseLogger.Error().Err(err).Msg("Fail to read the logger config file")
		}
	}
}

func initLog() {
	if viperConf.GetString("timefieldformat") != "" {
		zerolog.TimeFieldFormat = viperConf.GetString("timefieldformat")
	}

	out := os.Stderr
	if outputName := viperConf.GetString("out"); outputName != "" {
		if o, err := getOutput(outputName); err == nil {
			out = o
			baseLogger = baseLogger.Output(out)
		} else {
			baseLogger.Warn().Err(err).Str("outputName", outputName).Msg("failed to open output writer. set to stderr instead")
		}
	}

	switch strings.ToLower(viperConf.GetString("formatter")) {
	case "", "json":
		baseLogger = baseLogger.Output(out)
	case "console":
		baseLogger = baseLogger.Output(
			zerolog.ConsoleWriter{Out: colorable.NewColorable(out), NoColor: false, TimeFormat: zerolog.TimeFieldFormat})
	case "console_no_color":
		baseLogger = baseLogger.Output(
			zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: zerolog.TimeFieldFormat})
	default:
		baseLogger.Warn().Str("formatter", viperConf.GetString("formatter")).Msg("Invalid formatter. Only allowed; console/console_no_color/json")
		baseLogger = baseLogger.Output(out)
	}

	if viperConf.GetBool("caller") {
		baseLogger = baseLogger.With().Caller().Logger()
	}

	zLevel := zerolog.InfoLevel
	if level := viperConf.GetString("level"); level != "" {
		var err error
		if zLevel, err = zerolog.ParseLevel(level); err != nil {
			baseLogger.Warn().Err(err).Msg("Fail to parse the default log level. set the level as info")
			zLevel = zerolog.InfoLevel
		}
	}

	baseLogger = baseLogger.With().Timestamp().Logger().Level(zLevel)
	baseLevel = zLevel
}

// NewLogger creates a sub logger tagged with moduleName. Module-level
// config sections override the base level and output.
func NewLogger(moduleName string) *Logger {
	logInitLock.Lock()
	defer logInitLock.Unlock()

	if !isLogInit {
		loadConfigFile()
		initLog()
		isLogInit = true
	}

	zLogger := baseLogger.With().Str("module", moduleName).Logger()
	zLevel := baseLevel

	if subConf := viperConf.Sub(moduleName); subConf != nil {
		if outputName := subConf.GetString("out"); outputName != "" {
			if out, err := getOutput(outputName); err == nil {
				zLogger = zLogger.Output(out)
			} else {
				baseLogger.Warn().Err(err).Str("outputName", outputName).Str("module", moduleName).Msg("failed to open output writer. set to base out instead")
			}
		}

		if level := subConf.GetString("level"); level != "" {
			var err error
			if zLevel, err = zerolog.ParseLevel(level); err != nil {
				zLevel = zerolog.InfoLevel
			}
			zLogger = zLogger.Level(zLevel)
		}
	}

	return &Logger{
		Logger: &zLogger,
		name:   moduleName,
		level:  zLevel,
	}
}

// Default returns the base logger without a module tag.
func Default() *Logger {
	logInitLock.Lock()
	defer logInitLock.Unlock()

	if !isLogInit {
		loadConfigFile()
		initLog()
		isLogInit = true
	}

	return &Logger{
		Logger: &baseLogger,
		name:   "",
		level:  baseLevel,
	}
}

// IsDebugEnabled is used to avoid generating expensive debug statements
// when the level filters them out anyway.
func (logger *Logger) IsDebugEnabled() bool {
	return logger.level <= zerolog.DebugLevel
}

// Level returns current logger level.
func (logger *Logger) Level() string {
	return logger.level.String()
}

var errEmptyName = errors.New("not really error. just placeholder")

// getOutput maps outName to a writer: the keywords stdout and stderr, or
// a file path opened in append mode.
func getOutput(outName string) (*os.File, error) {
	switch outName {
	case "":
		return nil, errEmptyName
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(outName, os.O_WRONLY|os.O_CREATE|os.O_APPEND|os.O_SYNC, 0644)
	}
}
