package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/spigell/voice-interviewer/internal/ai/gemini"
	"github.com/spigell/voice-interviewer/internal/interview"
	"github.com/spigell/voice-interviewer/internal/speech"
	"github.com/spigell/voice-interviewer/internal/speech/mic"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "interviewer"
)

type Config struct {
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
	Interview *InterviewConfig `mapstructure:"interview"`
	Speech    *SpeechConfig    `mapstructure:"speech"`
	LogFile   string           `mapstructure:"log-file"`
}

type GeminiConfig struct {
	APIKey          string   `mapstructure:"api-key"`
	APIKeyFile      string   `mapstructure:"api-key-file"`
	Models          []string `mapstructure:"models"`
	Discover        bool     `mapstructure:"discover"`
	Temperature     float32  `mapstructure:"temperature"`
	MaxOutputTokens int32    `mapstructure:"max-output-tokens"`
	MaxRetries      int      `mapstructure:"max-retries"`
	MaxLogLength    int      `mapstructure:"max-log-length"`
	ProbePrompt     string   `mapstructure:"probe-prompt"`
}

type InterviewConfig struct {
	interview.Plan  `mapstructure:",squash"`
	ResumeMaxChars  int    `mapstructure:"resume-max-chars"`
	MinAnswerLength int    `mapstructure:"min-answer-length"`
	MinIntroLength  int    `mapstructure:"min-intro-length"`
	FillerAnswer    string `mapstructure:"filler-answer"`
	FillerIntro     string `mapstructure:"filler-intro"`
}

type SpeechConfig struct {
	speech.ListenConfig `mapstructure:",squash"`
	SampleRate          int `mapstructure:"sample-rate"`
	FramesPerBuffer     int `mapstructure:"frames-per-buffer"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interviewer runs a voice driven technical interview against a job description and a resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	if err := viper.BindEnv("gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().Bool("json", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to a rotating file instead of the console")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func setDefaults() {
	viper.SetDefault("gemini.models", gemini.DefaultModels)
	viper.SetDefault("gemini.discover", true)
	viper.SetDefault("gemini.temperature", gemini.DefaultTemperature)
	viper.SetDefault("gemini.max-output-tokens", gemini.DefaultMaxOutputTokens)
	viper.SetDefault("gemini.max-retries", gemini.DefaultMaxRetries)
	viper.SetDefault("gemini.max-log-length", gemini.DefaultMaxLogLength)
	viper.SetDefault("gemini.probe-prompt", gemini.DefaultProbePrompt)

	viper.SetDefault("interview.questions", interview.DefaultQuestions)
	viper.SetDefault("interview.resume-questions", interview.DefaultResumeQuestions)
	viper.SetDefault("interview.resume-max-chars", interview.DefaultResumeLimit)
	viper.SetDefault("interview.min-answer-length", interview.DefaultMinAnswerLength)
	viper.SetDefault("interview.min-intro-length", interview.DefaultMinIntroLength)
	viper.SetDefault("interview.filler-answer", interview.DefaultFillerAnswer)
	viper.SetDefault("interview.filler-intro", interview.DefaultFillerIntro)

	viper.SetDefault("speech.calibration", speech.DefaultCalibration)
	viper.SetDefault("speech.timeout", speech.DefaultTimeout)
	viper.SetDefault("speech.phrase-limit", speech.DefaultPhraseLimit)
	viper.SetDefault("speech.pause", speech.DefaultPause)
	viper.SetDefault("speech.min-energy", speech.DefaultMinEnergy)
	viper.SetDefault("speech.sample-rate", mic.DefaultSampleRate)
	viper.SetDefault("speech.frames-per-buffer", mic.DefaultFramesPerBuffer)
}

func initConfig() {
	// A missing .env is fine; the key may come from the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every key has a default, so only an explicitly requested file is required.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
