package cmd

import (
	"context"
	"log"

	"github.com/avoran/interview-agent/internal/ai/gemini"
	"github.com/avoran/interview-agent/internal/logger"
	"github.com/avoran/interview-agent/internal/questions"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load interview questions into the question store",
	Long: "Load interview questions into the question store. Without --file the built-in " +
		"corpus is used. Ideal answers are embedded when a gemini api key is available, " +
		"enabling the semantic-similarity scoring signal.",
	Run: func(cmd *cobra.Command, _ []string) {
		seed(cmd)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringP("file", "f", "", "a yaml file with questions to load instead of the built-in corpus")
}

func seed(cmd *cobra.Command) {
	ctx := context.Background()

	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), logFile(config))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	corpus, err := loadCorpus(cmd)
	if err != nil {
		logger.Fatal("loading the question corpus", zap.Error(err))
	}

	var embedder questions.Embedder
	if apiKey, err := resolveAPIKey(config); err != nil {
		logger.Warn("no gemini api key, seeding without embeddings", zap.Error(err))
	} else {
		generator, err := gemini.NewGenerator(ctx, apiKey, geminiModel(config), geminiRetries(config), logger)
		if err != nil {
			logger.Fatal("creating a gemini client", zap.Error(err))
		}
		embedder = generator
	}

	store, err := questions.Open(storePath(config), embedder, logger)
	if err != nil {
		logger.Fatal("opening the question store", zap.Error(err))
	}
	defer store.Close()

	if err := store.Add(ctx, corpus); err != nil {
		logger.Fatal("loading questions", zap.Error(err))
	}

	count, err := store.Count(ctx)
	if err != nil {
		logger.Fatal("counting questions", zap.Error(err))
	}

	logger.Info("question store seeded",
		zap.Int("loaded", len(corpus)),
		zap.Int("total", count),
	)
}

func loadCorpus(cmd *cobra.Command) ([]questions.Question, error) {
	if file := cmd.Flag("file").Value.String(); file != "" {
		return questions.LoadCorpus(file)
	}
	return questions.DefaultCorpus()
}
