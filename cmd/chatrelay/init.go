// ABOUTME: Interactive config file generator for chatrelay init
// ABOUTME: Prompts for each section and writes a YAML file with env var references for secrets

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func runInit(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "chatrelay configuration setup")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)

	outputFile := prompt(reader, out, "Config file path", getConfigPath())

	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, out, "File exists. Overwrite?", "no")) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	fmt.Fprintln(out, "\n--- Server ---")
	httpAddr := prompt(reader, out, "HTTP address", ":3001")

	fmt.Fprintln(out, "\n--- Assistant ---")
	assistantID := prompt(reader, out, "Assistant ID", "${ASSISTANT_ID}")

	fmt.Fprintln(out, "\n--- Lead Notifications ---")
	smtpHost := prompt(reader, out, "SMTP host (leave empty to disable mail)", "")
	var smtpPort, mailFrom, mailTo string
	if smtpHost != "" {
		smtpPort = prompt(reader, out, "SMTP port", "587")
		mailFrom = prompt(reader, out, "Sender address", "")
		mailTo = prompt(reader, out, "Recipient address", "")
	}

	fmt.Fprintln(out, "\n--- Transcript Viewer ---")
	viewerUser := prompt(reader, out, "Viewer username", "${LOG_EMAIL}")

	fmt.Fprintln(out, "\n--- History ---")
	backend := prompt(reader, out, "History backend (memory/sqlite)", "memory")
	var historyPath string
	if backend == "sqlite" {
		historyPath = prompt(reader, out, "SQLite database path", filepath.Join(filepath.Dir(outputFile), "history.db"))
	}

	fmt.Fprintln(out, "\n--- Logging ---")
	logLevel := prompt(reader, out, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, out, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# chatrelay configuration\n")
	cfg.WriteString("# Generated by chatrelay init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n\n", httpAddr))

	cfg.WriteString("assistant:\n")
	cfg.WriteString("  api_key: \"${OPENAI_API_KEY}\"\n")
	cfg.WriteString(fmt.Sprintf("  assistant_id: %q\n\n", assistantID))

	if smtpHost != "" {
		cfg.WriteString("mail:\n")
		cfg.WriteString(fmt.Sprintf("  host: %q\n", smtpHost))
		cfg.WriteString(fmt.Sprintf("  port: %s\n", smtpPort))
		cfg.WriteString("  username: \"${SMTP_USER}\"\n")
		cfg.WriteString("  password: \"${SMTP_PASS}\"\n")
		cfg.WriteString(fmt.Sprintf("  from: %q\n", mailFrom))
		cfg.WriteString(fmt.Sprintf("  to: %q\n\n", mailTo))
	}

	cfg.WriteString("viewer:\n")
	cfg.WriteString(fmt.Sprintf("  username: %q\n", viewerUser))
	cfg.WriteString("  password: \"${LOG_PASSWORD}\"\n\n")

	cfg.WriteString("history:\n")
	cfg.WriteString(fmt.Sprintf("  backend: %q\n", backend))
	if historyPath != "" {
		cfg.WriteString(fmt.Sprintf("  path: %q\n", historyPath))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Secrets stay in the environment, but addresses are still private.
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintln(out, "\nTo start the server:")
	fmt.Fprintln(out, "  chatrelay serve")

	return nil
}

func yes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y"
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
