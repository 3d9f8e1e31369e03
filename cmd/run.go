package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/avoran/interview-agent/internal/ai"
	"github.com/avoran/interview-agent/internal/ai/gemini"
	"github.com/avoran/interview-agent/internal/audit"
	"github.com/avoran/interview-agent/internal/evaluation"
	"github.com/avoran/interview-agent/internal/interview"
	"github.com/avoran/interview-agent/internal/logger"
	"github.com/avoran/interview-agent/internal/questions"
	"github.com/avoran/interview-agent/internal/report"
	"github.com/avoran/interview-agent/internal/secrets"
	"github.com/avoran/interview-agent/internal/utils"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultStorePath = "questions.db"
	defaultLogsDir   = "interview_logs"

	// Budget for a single model call chain while the candidate waits.
	evalTimeout = 60 * time.Second

	// Short pause after feedback before the next question is shown.
	feedbackPause = 2 * time.Second
)

var startPrompt = promptui.Select{
	Label: "Start the interview?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interview against a resume",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume-file", "r", "", "path to the candidate's resume in plain text")
	runCmd.Flags().BoolP("auto-start", "y", false, "do not ask for confirmation before the first question")

	viper.BindPFlag("resume-file", runCmd.Flags().Lookup("resume-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}
	if config == nil {
		config = &Config{}
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), logFile(config))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the interview-agent", zap.String("version", version))

	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resumeText, err := loadResume(config)
	if err != nil {
		logger.Fatal("loading resume",
			zap.Error(err),
			zap.String("hint", "set --resume-file or the 'resume-file' key in the configuration file"),
		)
	}

	apiKey, err := resolveAPIKey(config)
	if err != nil {
		logger.Fatal("loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or the 'gemini.api-key' key in the configuration file"),
		)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiModel(config), geminiRetries(config), logger)
	if err != nil {
		logger.Fatal("creating a gemini client", zap.Error(err))
	}

	store, err := openStore(ctx, config, generator, logger)
	if err != nil {
		logger.Fatal("opening the question store", zap.Error(err))
	}
	defer store.Close()

	maxLog := geminiMaxLogLength(config)
	roles := detectRoles(ctx, gemini.NewRoleExtractor(generator, logger), resumeText, logger)

	session, err := interview.New(roles, store, interview.Options{
		Selector:     gemini.NewSelector(generator, maxLog, logger),
		AllowRepeats: config.Interview != nil && config.Interview.AllowRepeats,
		SkipWarmup:   config.Interview != nil && config.Interview.SkipWarmup,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("creating a session", zap.Error(err))
	}

	if cmd.Flag("auto-start").Value.String() == "false" {
		_, answer, err := startPrompt.Run()
		if err != nil || answer == PromptNo {
			logger.Info("exiting", zap.String("reason", "interview not started"))
			return
		}
	}

	evaluator := evaluation.NewEvaluator(gemini.NewJudge(generator, maxLog, logger), store, logger)

	flow := interview.NewFlow()
	if err := flow.Start(); err != nil {
		logger.Fatal("starting the interview flow", zap.Error(err))
	}

	fmt.Printf("\nInterviewing for: %s\n\n", strings.Join(roleNames(roles), ", "))

	if err := conduct(ctx, flow, session, evaluator, logger); err != nil {
		logger.Warn("interview ended early", zap.Error(err))
	}

	if err := flow.Finish(); err != nil {
		logger.Fatal("finishing the interview flow", zap.Error(err))
	}

	finish(ctx, config, session, gemini.NewSummarizer(generator), logger)
}

// conduct drives the question/answer/feedback loop until every quota is
// filled or the candidate bails out.
func conduct(ctx context.Context, flow *interview.Flow, session *interview.Session, evaluator *evaluation.Evaluator, logger *zap.Logger) error {
	number := 0
	for {
		question, err := session.NextQuestion(ctx)
		if err != nil {
			return fmt.Errorf("issuing the next question: %w", err)
		}
		if question == nil {
			return nil
		}
		number++

		if err := flow.BeginQuestion(question.ID); err != nil {
			return err
		}

		fmt.Printf("Question %d of %d [%s]:\n%s\n\n", number, interview.TotalQuestions, question.Role, question.Text)

		answer, err := readAnswer()
		if err != nil {
			return fmt.Errorf("reading the answer: %w", err)
		}

		evalCtx, cancel := context.WithTimeout(ctx, evalTimeout)
		result := evaluator.Evaluate(evalCtx, *question, answer)
		cancel()

		if err := session.Record(question.ID, answer, result.Score, result.Reasoning, result.Strengths, result.Weaknesses); err != nil {
			return fmt.Errorf("recording the evaluation: %w", err)
		}

		logger.Debug("answer evaluated",
			zap.String("question", question.ID),
			zap.Int("score", result.Score),
			zap.Int("rubric", result.RubricScore),
			zap.Float64("similarity", result.Similarity),
		)

		if err := flow.GiveFeedback(result.Reasoning); err != nil {
			return err
		}
		if result.Reasoning != "" {
			fmt.Printf("Feedback: %s\n\n", result.Reasoning)
		}

		if err := utils.WaitFor(ctx, feedbackPause); err != nil {
			return err
		}
	}
}

func readAnswer() (string, error) {
	answerPrompt := promptui.Prompt{
		Label:     "Your answer",
		AllowEdit: true,
	}

	answer, err := answerPrompt.Run()
	if err != nil {
		// An interrupt means the candidate is done, not a failure.
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", fmt.Errorf("answer input aborted: %w", err)
		}
		return "", err
	}
	return answer, nil
}

// finish aggregates, summarizes, renders, and persists the run artifacts.
func finish(ctx context.Context, config *Config, session *interview.Session, summarizer ai.Summarizer, logger *zap.Logger) {
	export := session.Export()
	overall := evaluation.Aggregate(export)

	summaryCtx, cancel := context.WithTimeout(ctx, evalTimeout)
	summary := evaluation.Summarize(summaryCtx, summarizer, export, overall, logger)
	cancel()

	rep := report.Build(export, overall, summary)
	if err := rep.Render(os.Stdout, export.RoleOrder); err != nil {
		logger.Warn("rendering the report", zap.Error(err))
	}

	writer, err := audit.NewWriter(logsDir(config), logger)
	if err != nil {
		logger.Warn("audit logs disabled", zap.Error(err))
		return
	}

	if path, err := writer.SaveAnswers(export); err != nil {
		logger.Warn("saving the answers artifact", zap.Error(err))
	} else {
		logger.Info("answers saved", zap.String("path", path))
	}
	if path, err := writer.SaveEvaluation(rep); err != nil {
		logger.Warn("saving the evaluation artifact", zap.Error(err))
	} else {
		logger.Info("evaluation saved", zap.String("path", path))
	}
}

// detectRoles asks the model for target roles and degrades to the
// extractor's fallback on any failure.
func detectRoles(ctx context.Context, extractor ai.RoleExtractor, resumeText string, logger *zap.Logger) []ai.DetectedRole {
	rolesCtx, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()

	roles, err := extractor.ExtractRoles(rolesCtx, resumeText)
	if err != nil || len(roles) == 0 {
		logger.Warn("role extraction failed, using the generalist track", zap.Error(err))
		return []ai.DetectedRole{{Name: "General Technical Candidate", Confidence: 0.5}}
	}

	logger.Info("detected roles", zap.Any("roles", roles))
	return roles
}

// openStore opens the sqlite question store and seeds it from the embedded
// corpus when empty.
func openStore(ctx context.Context, config *Config, embedder questions.Embedder, logger *zap.Logger) (*questions.Store, error) {
	store, err := questions.Open(storePath(config), embedder, logger)
	if err != nil {
		return nil, err
	}

	count, err := store.Count(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if count > 0 {
		return store, nil
	}

	corpus, err := questions.DefaultCorpus()
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("seeding an empty question store", zap.Int("questions", len(corpus)))
	if err := store.Add(ctx, corpus); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func loadResume(config *Config) (string, error) {
	path := strings.TrimSpace(viper.GetString("resume-file"))
	if path == "" && config != nil {
		path = strings.TrimSpace(config.ResumeFile)
	}
	if path == "" {
		return "", errors.New("resume file is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("resume %s is empty", path)
	}
	return string(data), nil
}

func resolveAPIKey(config *Config) (string, error) {
	src := secrets.Source{
		Name: "gemini api key",
		Env:  "GEMINI_API_KEY",
	}
	if config != nil && config.Gemini != nil {
		src.Value = config.Gemini.APIKey
		src.File = config.Gemini.APIKeyFile
	}
	return secrets.Load(src)
}

func roleNames(roles []ai.DetectedRole) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, role.Name)
	}
	return out
}

func storePath(config *Config) string {
	if config != nil && config.Store != nil && config.Store.Path != "" {
		return config.Store.Path
	}
	return defaultStorePath
}

func logsDir(config *Config) string {
	if config != nil && config.Logs != nil && config.Logs.Dir != "" {
		return config.Logs.Dir
	}
	return defaultLogsDir
}

func logFile(config *Config) string {
	if config != nil && config.Logs != nil {
		return config.Logs.File
	}
	return ""
}

func geminiModel(config *Config) string {
	if config != nil && config.Gemini != nil {
		return config.Gemini.Model
	}
	return ""
}

func geminiRetries(config *Config) int {
	if config != nil && config.Gemini != nil {
		return config.Gemini.MaxRetries
	}
	return 0
}

func geminiMaxLogLength(config *Config) int {
	if config != nil && config.Gemini != nil {
		return config.Gemini.MaxLogLength
	}
	return 0
}
