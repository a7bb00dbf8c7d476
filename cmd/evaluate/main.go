package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/zatekoja/claim-appeal/backend/internal/application/appeal"
	"github.com/zatekoja/claim-appeal/backend/internal/evaluation"
)

func main() {
	goldenPath := flag.String("golden", "config/golden_responses.json", "path to the golden response set")
	minAccuracy := flag.Float64("min-accuracy", 1.0, "fail when probability accuracy drops below this value")
	flag.Parse()

	if _, err := os.Stat(*goldenPath); err != nil {
		if _, err := os.Stat("backend/" + *goldenPath); err == nil {
			*goldenPath = "backend/" + *goldenPath
		}
	}

	golden, err := evaluation.LoadGoldenResponses(*goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden responses: %v", err)
	}
	if err := evaluation.ValidateGoldenResponses(golden); err != nil {
		log.Fatalf("Invalid golden responses: %v", err)
	}

	runner := evaluation.NewRunner(appeal.NewHeuristicParser())
	summary := runner.Run(golden)

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	if summary.ProbabilityAccuracy < *minAccuracy {
		log.Printf("Probability accuracy %.2f is below %.2f", summary.ProbabilityAccuracy, *minAccuracy)
		os.Exit(1)
	}
}
