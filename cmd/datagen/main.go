package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		users           = flag.Int("users", cfg.NumUsers, "number of users to generate")
		properties      = flag.Int("properties", cfg.NumProperties, "number of property listings to generate")
		offers          = flag.Int("offers", cfg.NumOffers, "number of offers to generate")
		emailChance     = flag.Float64("duplicate-email-chance", cfg.DuplicateEmailChance, "probability of reusing an existing email")
		phoneChance     = flag.Float64("duplicate-phone-chance", cfg.DuplicatePhoneChance, "probability of reusing an existing phone number")
		digitalIDChance = flag.Float64("duplicate-digital-id-chance", cfg.DuplicateDigitalIDChance, "probability of reusing a digital ID held by another role")
		verifiedChance  = flag.Float64("verified-chance", cfg.VerifiedChance, "probability that a user holds a digital ID")
		password        = flag.String("password", cfg.Password, "demo password assigned to every user")
		seed            = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir       = flag.String("output-dir", "data", "directory to write the dataset files")
		writeStdout     = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumUsers:                 *users,
		NumProperties:            *properties,
		NumOffers:                *offers,
		DuplicateEmailChance:     clampProbability(*emailChance),
		DuplicatePhoneChance:     clampProbability(*phoneChance),
		DuplicateDigitalIDChance: clampProbability(*digitalIDChance),
		VerifiedChance:           clampProbability(*verifiedChance),
		Password:                 *password,
		Seed:                     *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d users, %d properties, %d offers and %d ledger events into %s\n",
		len(dataset.Users), len(dataset.Properties), len(dataset.Offers), len(dataset.Events), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
