package main

// Extract one invoice from the command line:
//   go run ./cmd/invoicectl -file invoice.pdf
//   go run ./cmd/invoicectl -text "ACME Corp invoice #12 total 40.00"

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"invoice-backend/internal/extraction"
	"invoice-backend/internal/ingest"
	"invoice-backend/internal/intake"
	"invoice-backend/internal/llm"
	"invoice-backend/internal/llm/gemini"
	"invoice-backend/internal/llm/openai"
	"invoice-backend/internal/review"
	"invoice-backend/internal/shared/config"
	"invoice-backend/internal/shared/telemetry"
)

const cliUser = "cli"

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to an invoice file (pdf, png, jpg, webp, csv, xlsx, docx)")
	text := flag.String("text", "", "Invoice text to extract instead of a file")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider (openai, gemini)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	outPath := flag.String("out", "", "Path to write the JSON result (optional)")
	flag.Parse()

	telemetry.Configure(cfg.LogLevel)

	if (*filePath == "") == (strings.TrimSpace(*text) == "") {
		exitErr("exactly one of -file or -text is required")
	}

	ctx := context.Background()
	gen, closeGen, err := buildGenerator(ctx, cfg, *provider, *model)
	if err != nil {
		exitErr(err.Error())
	}
	defer closeGen()

	guarded := llm.NewGuarded(gen, llm.GuardConfig{Name: "cli"})
	svc := intake.NewService(extraction.NewClient(guarded), guarded, nil, review.NewStore(), nil)

	var out intake.Outcome
	if *filePath != "" {
		doc, readErr := readDocument(*filePath)
		if readErr != nil {
			exitErr(readErr.Error())
		}
		out, err = svc.ExtractUpload(ctx, cliUser, doc)
	} else {
		out, err = svc.ExtractText(ctx, cliUser, *text)
	}
	if err != nil {
		exitErr(fmt.Sprintf("extract: %s (%v)", intake.FailureReason(err), err))
	}

	pretty, err := json.MarshalIndent(map[string]any{
		"result":      out.Result,
		"warnings":    out.Warnings,
		"contentKind": out.ContentKind,
	}, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func readDocument(path string) (ingest.UploadedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.UploadedDocument{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	name := filepath.Base(path)
	return ingest.ReadUpload(name, mime.TypeByExtension(filepath.Ext(name)), f)
}

func buildGenerator(ctx context.Context, cfg config.Config, provider, model string) (llm.Generator, func(), error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, model)
		return client, func() {}, err
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GCPProjectID, cfg.VertexRegion, model)
		if err != nil {
			return nil, func() {}, err
		}
		return client, func() { _ = client.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
