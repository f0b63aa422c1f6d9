package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spigell/voice-interviewer/internal/ai/gemini"
	"github.com/spigell/voice-interviewer/internal/console"
	"github.com/spigell/voice-interviewer/internal/document"
	"github.com/spigell/voice-interviewer/internal/driver"
	"github.com/spigell/voice-interviewer/internal/interview"
	"github.com/spigell/voice-interviewer/internal/logger"
	"github.com/spigell/voice-interviewer/internal/secrets"
	"github.com/spigell/voice-interviewer/internal/speech"
	"github.com/spigell/voice-interviewer/internal/speech/mic"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const apiKeyHint = "set GEMINI_API_KEY (a .env file works too), GEMINI_API_KEY_FILE or gemini.api-key-file in the configuration file"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a voice interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("questions", "n", 0, "limit the number of questions for a short demo run")
	runCmd.Flags().StringP("resume", "r", "", "path to the resume (.pdf or .docx). Asked interactively when unset.")
	runCmd.Flags().StringP("job-description-file", "j", "", "file with the job description. Asked interactively when unset.")
	runCmd.Flags().Bool("text", false, "type answers instead of speaking them")
}

// run conducts one interview.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Gemini == nil || config.Interview == nil || config.Speech == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the interviewer", zap.String("version", version))

	logger.Debug(fmt.Sprintf("starting with config: \n %s", redactedConfig(config)))

	limit, _ := cmd.Flags().GetInt("questions")
	plan, err := interviewPlan(config.Interview.Plan, limit)
	if err != nil {
		logger.Fatal("checking the question plan", zap.Error(err), zap.String("hint", "--questions must be at least 2"))
	}

	out := console.New(os.Stdout)

	client, err := newGeminiClient(ctx, config.Gemini, logger)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err), zap.String("hint", apiKeyHint))
	}

	out.Status("Selecting a Gemini model...")
	model, err := gemini.SelectModel(ctx, client, gemini.SelectionConfig{
		Candidates:  config.Gemini.Models,
		Discover:    config.Gemini.Discover,
		ProbePrompt: config.Gemini.ProbePrompt,
		OnProbe:     out.Probe,
	}, logger)
	if err != nil {
		logger.Fatal("selecting a model", zap.Error(err))
	}
	out.Status(fmt.Sprintf("Using model %s", model))

	generator := gemini.NewGenerator(client, model, gemini.Options{
		Temperature:     genai.Ptr(config.Gemini.Temperature),
		MaxOutputTokens: config.Gemini.MaxOutputTokens,
		MaxRetries:      config.Gemini.MaxRetries,
		MaxLogLength:    config.Gemini.MaxLogLength,
	}, logger)

	input, err := collectInput(cmd, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("exiting", zap.String("reason", "input canceled"))
			return
		}
		out.Status(fmt.Sprintf("Cannot start the interview: %v", err))
		logger.Error("collecting interview input", zap.Error(err))
		return
	}

	answers := newAnswerSource(cmd, config.Speech, generator, out, logger)

	session, err := interview.New(plan, generator,
		interview.WithLogger(logger),
		interview.WithFiller(interview.Filler{
			MinLength: config.Interview.MinAnswerLength,
			Text:      config.Interview.FillerAnswer,
		}),
	)
	if err != nil {
		logger.Fatal("creating the interview", zap.Error(err))
	}

	out.Banner(fmt.Sprintf("TECHNICAL INTERVIEW: %d QUESTIONS", plan.Questions))

	d := driver.New(session, answers, out, driver.Config{
		ResumeLimit: config.Interview.ResumeMaxChars,
		IntroFiller: interview.Filler{
			MinLength: config.Interview.MinIntroLength,
			Text:      config.Interview.FillerIntro,
		},
	}, logger)

	if _, err := d.Run(ctx, input); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("exiting", zap.String("reason", "interview canceled"))
			return
		}
		logger.Error("interview ended early", zap.Error(err))
	}
}

// interviewPlan applies the --questions demo limit. Zero keeps the configured
// budget; one question leaves no room for the skills phase.
func interviewPlan(plan interview.Plan, limit int) (interview.Plan, error) {
	if limit < 0 || limit == 1 {
		return plan, fmt.Errorf("%w: --questions %d, need at least 2 questions", interview.ErrInvalidPlan, limit)
	}

	plan = plan.WithLimit(limit)
	if err := plan.Validate(); err != nil {
		return plan, err
	}
	return plan, nil
}

func redactedConfig(config *Config) string {
	redacted := *config
	geminiConfig := *config.Gemini
	if geminiConfig.APIKey != "" {
		geminiConfig.APIKey = logger.Mask(geminiConfig.APIKey)
	}
	redacted.Gemini = &geminiConfig

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted, "", "  ")
	return string(pretty)
}

func newLogger() (*zap.Logger, error) {
	return logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  viper.GetString("log-file"),
	})
}

func newGeminiClient(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (*genai.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	log.Info("gemini api key loaded", logger.Masked("api_key", apiKey))

	return gemini.NewClient(ctx, apiKey)
}

// collectInput reads the job description and the resume. A resume that cannot
// be extracted ends the run before the interview starts.
func collectInput(cmd *cobra.Command, log *zap.Logger) (driver.Input, error) {
	var input driver.Input

	jdFile, _ := cmd.Flags().GetString("job-description-file")
	if jdFile = strings.TrimSpace(jdFile); jdFile != "" {
		data, err := os.ReadFile(document.CleanPath(jdFile))
		if err != nil {
			return input, fmt.Errorf("reading job description: %w", err)
		}
		input.JobDescription = strings.TrimSpace(string(data))
	} else {
		jd, err := console.JobDescription(console.Prompt)
		if err != nil {
			return input, err
		}
		input.JobDescription = jd
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	if strings.TrimSpace(resumePath) == "" {
		path, err := console.ResumePath(console.Prompt)
		if err != nil {
			return input, err
		}
		resumePath = path
	}

	resume, err := document.Extract(resumePath)
	if err != nil {
		return input, fmt.Errorf("extracting resume: %w", err)
	}
	input.Resume = resume

	log.Info("interview input collected",
		zap.Int("job_description_length", len(input.JobDescription)),
		zap.Int("resume_length", len(input.Resume)),
		zap.String("resume", document.CleanPath(resumePath)),
	)

	return input, nil
}

func newAnswerSource(cmd *cobra.Command, cfg *SpeechConfig, generator *gemini.Generator, out *console.Console, log *zap.Logger) driver.AnswerSource {
	if typed, _ := cmd.Flags().GetBool("text"); typed {
		log.Info("answers are typed", zap.String("reason", "text mode"))
		return console.NewTypedAnswers(console.Prompt)
	}

	listener := speech.NewListener(mic.New(cfg.SampleRate, cfg.FramesPerBuffer), cfg.ListenConfig)
	gateway := speech.NewGateway(listener, generator.Recognizer(), log)

	return console.NewPushToTalk(gateway, console.Prompt, out)
}
