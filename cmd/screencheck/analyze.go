package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"screencheck/pkg/analyzer"
	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

var analyzeExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".tif": true,
}

func newAnalyzeCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "analyze <file|directory|url> ...",
		Short: "Analyze screenshots for signs of manipulation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show analyzer details")

	return cmd
}

func runAnalyze(targets []string, verbose bool) error {
	var files []string
	var cleanups []string
	defer func() {
		for _, path := range cleanups {
			os.Remove(path)
		}
	}()

	for _, target := range targets {
		switch {
		case imageio.IsURL(target):
			printInfo("Downloading %s", target)
			path, err := imageio.DownloadToTemp(target)
			if err != nil {
				printError("Failed to download %s: %v", target, err)
				continue
			}
			cleanups = append(cleanups, path)
			files = append(files, path)

		default:
			info, err := os.Stat(target)
			if err != nil {
				printError("Cannot access %s: %v", target, err)
				continue
			}
			if info.IsDir() {
				found, err := gatherImages(target)
				if err != nil {
					printError("Failed to read directory %s: %v", target, err)
					continue
				}
				files = append(files, found...)
			} else {
				files = append(files, target)
			}
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("nothing to analyze")
	}
	printInfo("Found %d file(s) to analyze", len(files))

	var verdicts []string
	for _, file := range files {
		verdict, err := analyzeOne(file, verbose)
		if err != nil {
			printError("%s: %v", file, err)
			continue
		}
		verdicts = append(verdicts, verdict)
	}

	printSummary(verdicts)
	return nil
}

func gatherImages(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && analyzeExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func analyzeOne(path string, verbose bool) (string, error) {
	fmt.Printf("\n--- Analyzing %s ---\n", path)

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Running analyzers..."
	s.Start()

	start := time.Now()
	report, _, err := analyzer.AnalyzeFile(path)
	s.Stop()
	if err != nil {
		return "", err
	}

	displayReport(report, verbose)
	printInfo("Analysis completed in %v", time.Since(start).Round(time.Millisecond))

	return report.Overall.Verdict, nil
}

func displayReport(report *models.Report, verbose bool) {
	overall := report.Overall

	switch overall.Verdict {
	case "FAKE":
		printAlert("%s (score %.1f, %s confidence)", overall.Verdict, overall.Score, overall.Confidence)
	case "SUSPICIOUS":
		printWarning("%s (score %.1f, %s confidence)", overall.Verdict, overall.Score, overall.Confidence)
	case "UNCERTAIN":
		printInfo("%s (score %.1f, %s confidence)", overall.Verdict, overall.Score, overall.Confidence)
	default:
		printSuccess("%s (score %.1f, %s confidence)", overall.Verdict, overall.Score, overall.Confidence)
	}
	fmt.Println(overall.Message)

	names := make([]string, 0, len(report.Analyzers))
	for name := range report.Analyzers {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nBreakdown:")
	for _, name := range names {
		b, ok := overall.Breakdown[name]
		if !ok {
			continue
		}
		fmt.Printf("  %-12s raw %5.1f x %.2f = %5.1f\n", name, b.RawScore, b.Weight, b.WeightedScore)
	}

	fmt.Println("\nFindings:")
	for _, name := range names {
		for _, flag := range report.Analyzers[name].Flags {
			fmt.Printf("  [%s] %s\n", name, flag)
		}
	}

	if verbose {
		fmt.Println("\nDetails:")
		for _, name := range names {
			for key, val := range report.Analyzers[name].Details {
				if key == "noise_map" || key == "exif" || key == "png_text_chunks" {
					continue
				}
				fmt.Printf("  %s.%s = %v\n", name, key, val)
			}
		}
	}
}

func printSummary(verdicts []string) {
	if len(verdicts) < 2 {
		return
	}

	counts := map[string]int{}
	for _, v := range verdicts {
		counts[v]++
	}

	fmt.Println("\n=== Analysis Summary ===")
	fmt.Printf("Total files analyzed: %d\n", len(verdicts))
	if n := counts["AUTHENTIC"]; n > 0 {
		fmt.Printf("%s Authentic: %d\n", successColor("[+]"), n)
	}
	if n := counts["UNCERTAIN"]; n > 0 {
		fmt.Printf("%s Uncertain: %d\n", infoColor("[*]"), n)
	}
	if n := counts["SUSPICIOUS"]; n > 0 {
		fmt.Printf("%s Suspicious: %d\n", warningColor("[!]"), n)
	}
	if n := counts["FAKE"]; n > 0 {
		fmt.Printf("%s Fake: %d\n", alertColor("[!!!]"), n)
	}
}
