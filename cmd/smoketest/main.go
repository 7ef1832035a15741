package main

import (
	"context"
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/logging"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// getJSON fetches url and decodes the JSON response into dst.
func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request", slog.String("url", url))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.New("unexpected status", slog.String("url", url), slog.Int("status", resp.StatusCode))
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(dst), "decode response", slog.String("url", url))
}

func TestAPI(client *http.Client, baseURL string) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var health struct {
		Status string `json:"status"`
	}
	if err := getJSON(ctx, client, baseURL+"/api/healthy", &health); err != nil {
		return errors.Wrap(err, "check health")
	}
	if health.Status != "ok" {
		return errors.New("unhealthy", slog.String("status", health.Status))
	}

	var questionnaires []json.RawMessage
	if err := getJSON(ctx, client, baseURL+"/api/questionnaires", &questionnaires); err != nil {
		return errors.Wrap(err, "list questionnaires")
	}
	if len(questionnaires) == 0 {
		return errors.New("no questionnaires found, something is likely wrong")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	url := os.Args[1]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	client := &http.Client{Timeout: 5 * time.Second} //nolint:mnd // 5 seconds
	if err := TestAPI(client, strings.TrimSuffix(url, "/")); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing api", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
