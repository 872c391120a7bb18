package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"worktime-annotator/classifier"
	"worktime-annotator/controller"
	"worktime-annotator/internal/types"
	"worktime-annotator/storage"
	"worktime-annotator/utils"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		urlFlag      = flag.String("url", "", "Page URL to fetch and annotate")
		inputFlag    = flag.String("input", "", "Local HTML file to annotate (instead of -url)")
		outputFlag   = flag.String("output", "", "Write annotated HTML to this file")
		reportFlag   = flag.String("report", "", "Write the JSON price report to this file (default: stdout)")
		wageFlag     = flag.Float64("wage", 0, "Hourly wage; 0 means unset")
		modeFlag     = flag.String("mode", types.ModeSideBySide, "Display mode: side-by-side or replace")
		showFlag     = flag.Bool("show-hours", true, "Apply presentation; false detects only")
		tierType     = flag.String("tier-type", "money", "Tier classification input: money or hours")
		tierGreen    = flag.Float64("tier-green", 0, "Green tier threshold")
		tierYellow   = flag.Float64("tier-yellow", 50, "Yellow tier threshold")
		tierRed      = flag.Float64("tier-red", 100, "Red tier threshold")
		settingsFlag = flag.String("settings", "", "Settings JSON file (overrides wage/mode/tier flags)")
		forceFlag    = flag.Bool("force", false, "Annotate even when the page does not classify as a shop")
		requestDelay = flag.Duration("delay", 1*time.Second, "Delay between requests")
		maxRetries   = flag.Int("retries", 3, "Maximum retry attempts")
		timeout      = flag.Duration("timeout", 30*time.Second, "Request timeout")
		useBrowser   = flag.Bool("browser", true, "Use headless browser for JavaScript-heavy sites")
		httpOnly     = flag.Bool("http-only", false, "Use HTTP requests only (disable headless browser)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Validate flags - either -url or -input must be provided
	if *urlFlag == "" && *inputFlag == "" {
		log.Fatal("Either -url or -input flag is required")
	}
	if *urlFlag != "" && *inputFlag != "" {
		log.Fatal("Cannot use both -url and -input flags")
	}

	// Setup logging
	logger := logrus.New()

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// Create configuration
	config := types.DefaultConfig()
	config.RequestDelay = *requestDelay
	config.MaxRetries = *maxRetries
	config.Timeout = *timeout
	config.UseHeadlessBrowser = *useBrowser && !*httpOnly

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Shopping-site gate; -input files have no address to classify, so
	// they pass only with -force
	if *urlFlag != "" {
		gate := classifier.New(logger)
		if !gate.IsShoppingSite(*urlFlag) && !*forceFlag {
			logger.Infof("%s does not classify as a shopping site, nothing to do (use -force to override)", *urlFlag)
			return
		}
	} else if !*forceFlag {
		logger.Info("Local input has no address to classify; assuming -force")
	}

	// Acquire page markup
	var markup string
	if *inputFlag != "" {
		data, err := os.ReadFile(*inputFlag)
		if err != nil {
			logger.Fatalf("Failed to read input file: %v", err)
		}
		markup = string(data)
	} else {
		fetcher := utils.NewPageFetcher(config, logger)
		defer fetcher.Close()

		html, err := fetcher.Fetch(ctx, *urlFlag)
		if err != nil {
			logger.Fatalf("Failed to fetch page: %v", err)
		}
		markup = html
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		logger.Fatalf("Failed to parse page: %v", err)
	}

	// Settings: file-backed when -settings is given, otherwise built
	// from flags
	var store storage.Store
	if *settingsFlag != "" {
		store = storage.NewFileStore(*settingsFlag, logger)
	} else {
		settings := types.Settings{
			HourlyWage:  *wageFlag,
			DisplayMode: *modeFlag,
			ShowHours:   *showFlag,
			Tiers: types.TierSettings{
				Type:   *tierType,
				Green:  *tierGreen,
				Yellow: *tierYellow,
				Red:    *tierRed,
			},
		}
		if settings.DisplayMode != types.ModeSideBySide && settings.DisplayMode != types.ModeReplace {
			log.Fatalf("Invalid -mode: %s", settings.DisplayMode)
		}
		if err := settings.Tiers.Validate(); err != nil {
			log.Fatalf("Invalid tier flags: %v", err)
		}
		store = storage.NewMemoryStore(settings)
	}

	// Run one full pass
	startTime := time.Now()
	ctrl := controller.New(doc, store, config, logger)
	defer ctrl.Close()

	ctrl.Reprocess(ctx)
	prices := ctrl.CurrentPrices()
	logger.Infof("Annotation completed in %v", time.Since(startTime))

	// Emit the annotated document
	if *outputFlag != "" {
		annotated, err := doc.Html()
		if err != nil {
			logger.Fatalf("Failed to render annotated page: %v", err)
		}
		if err := os.WriteFile(*outputFlag, []byte(annotated), 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Annotated page written to: %s", *outputFlag)
	}

	// Emit the price report
	jsonData, err := json.MarshalIndent(prices, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal price report: %v", err)
	}

	if *reportFlag != "" {
		if err := os.WriteFile(*reportFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write report file: %v", err)
		}
		logger.Infof("Price report written to: %s", *reportFlag)
	} else {
		fmt.Println(string(jsonData))
	}

	logger.Infof("Prices detected: %d", len(prices))
}
