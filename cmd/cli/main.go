package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/genai"

	"github.com/dvloznov/statement-copilot/internal/app"
	"github.com/dvloznov/statement-copilot/internal/chat"
	"github.com/dvloznov/statement-copilot/internal/config"
	"github.com/dvloznov/statement-copilot/internal/domain"
	"github.com/dvloznov/statement-copilot/internal/extract"
	"github.com/dvloznov/statement-copilot/internal/ingest"
	"github.com/dvloznov/statement-copilot/internal/logger"
	"github.com/dvloznov/statement-copilot/internal/report"
	"github.com/dvloznov/statement-copilot/internal/speech"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "chat":
		runChat(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Statement Copilot CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Analyze a bank statement and print the dashboard")
	fmt.Println("  chat      Analyze a statement, then chat about it interactively")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nStatements can be local files or gs:// URIs.")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := fs.String("file", "", "Statement file: local path or gs:// URI")
	query := fs.String("q", "", "Filter transactions by description or category")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cfg, client := setup(ctx, log)
	controller := newController(client, cfg, log)

	analyze(ctx, log, controller, cfg, *file)

	stmt := controller.Statement()
	printDashboard(stmt, controller.Warnings())

	if *query != "" {
		matched := report.Filter(stmt.Transactions, *query)
		fmt.Printf("\n=== Transactions matching %q (%d) ===\n", *query, len(matched))
		printTransactions(matched)
	}
}

func runChat(log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	file := fs.String("file", "", "Statement file: local path or gs:// URI")
	speakPath := fs.String("speak", "", "Write each reply as a WAV file to this path")
	voiceInput := fs.Bool("voice-input", false, "Read questions through the speech listener")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	ctx := logger.WithContext(context.Background(), log)

	cfg, client := setup(ctx, log)
	controller := newController(client, cfg, log)

	analyzeCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	analyze(analyzeCtx, log, controller, cfg, *file)
	cancel()

	printDashboard(controller.Statement(), controller.Warnings())

	var synthesizer *speech.Synthesizer
	var player speech.Player
	if *speakPath != "" {
		synthesizer = speech.NewSynthesizer(client, cfg.SpeechModel, cfg.Voice)
		player = &speech.WAVFilePlayer{Path: *speakPath}
	}

	fmt.Println("\nAsk anything about the statement. Type 'exit' to quit.")

	var listener speech.Listener
	if *voiceInput {
		listener = &speech.TypedListener{In: os.Stdin}
		defer listener.Stop()
	}
	scanner := bufio.NewScanner(os.Stdin)

	readLine := func() (string, bool) {
		fmt.Print("\n> ")
		if listener != nil {
			text, err := listener.Start(ctx)
			if err != nil {
				return "", false
			}
			return text, true
		}
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	// One playback at a time: a new reply stops the previous one.
	var playing speech.Playback
	for {
		line, ok := readLine()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := controller.Send(ctx, line)
		if err != nil {
			log.Fatal().Err(err).Msg("Chat turn failed")
		}
		fmt.Println("\n" + reply)

		if synthesizer != nil {
			if playing != nil {
				playing.Stop()
			}
			audio, err := synthesizer.Speak(ctx, reply)
			if err != nil {
				log.Warn().Err(err).Msg("Speech synthesis failed, continuing without audio")
				continue
			}
			playing, err = player.PlayPCM(audio.PCM, audio.SampleRate)
			if err != nil {
				log.Warn().Err(err).Msg("Playback failed")
				continue
			}
			fmt.Printf("(spoken reply written to %s)\n", *speakPath)
		}
	}

	if playing != nil {
		playing.Stop()
	}
}

func setup(ctx context.Context, log zerolog.Logger) (*config.Config, *genai.Client) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	return cfg, client
}

func newController(client *genai.Client, cfg *config.Config, log zerolog.Logger) *app.Controller {
	extractor := extract.NewGemini(client, cfg.ExtractionModel)
	chats := chat.NewGemini(client, cfg.ChatModel, log)
	return app.NewController(extractor, chats, log)
}

func analyze(ctx context.Context, log zerolog.Logger, controller *app.Controller, cfg *config.Config, file string) {
	payload, err := loadStatement(ctx, cfg, file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load statement")
	}

	log.Info().Str("file", payload.Filename).Int64("bytes", payload.SizeBytes).Msg("Analyzing statement")

	if err := controller.Analyze(ctx, payload); err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}
}

func loadStatement(ctx context.Context, cfg *config.Config, file string) (*ingest.Payload, error) {
	if strings.HasPrefix(file, "gs://") {
		var opts []option.ClientOption
		if cfg.GoogleCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentials))
		}
		return ingest.FetchGCS(ctx, file, opts...)
	}
	return ingest.EncodeFile(file)
}

func printDashboard(stmt *domain.ParsedStatement, warnings []string) {
	fmt.Println("\n=== Account Summary ===")
	fmt.Printf("Holder:    %s\n", stmt.Summary.AccountHolder)
	fmt.Printf("Account:   %s\n", stmt.Summary.AccountNumber)
	fmt.Printf("Period:    %s\n", stmt.Summary.StatementPeriod)
	fmt.Printf("Income:    %.2f %s\n", stmt.Summary.TotalIncome, stmt.Summary.Currency)
	fmt.Printf("Expenses:  %.2f %s\n", stmt.Summary.TotalExpenses, stmt.Summary.Currency)
	fmt.Printf("Opening:   %.2f\n", stmt.Summary.OpeningBalance)
	fmt.Printf("Closing:   %.2f\n", stmt.Summary.ClosingBalance)

	for _, w := range warnings {
		fmt.Printf("Warning:   %s\n", w)
	}

	fmt.Printf("\n=== Top Expense Categories ===\n")
	for _, c := range report.TopExpenseCategories(stmt.Transactions, 5) {
		fmt.Printf("  %-20s %.2f\n", c.Category, c.Total)
	}

	fmt.Printf("\n=== Insights ===\n")
	for _, ins := range stmt.Insights {
		fmt.Printf("  - %s\n", ins)
	}

	fmt.Printf("\n=== Transactions (%d) ===\n", len(stmt.Transactions))
	printTransactions(stmt.Transactions)
}

func printTransactions(txns []domain.Transaction) {
	for i, txn := range txns {
		sign := "-"
		if txn.Type == domain.TypeIncome {
			sign = "+"
		}
		fmt.Printf("%3d. %s  %s%.2f  %-10s %s\n",
			i+1, txn.Date.Format("2006-01-02"), sign, txn.Amount, txn.Category, txn.Description)
	}
}
