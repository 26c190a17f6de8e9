package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var smokeBase string

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Probe a running instance's public endpoints",
	RunE:  runSmoke,
}

func init() {
	smokeCmd.Flags().StringVar(&smokeBase, "base", "http://localhost:1335", "base URL of the running instance")
	rootCmd.AddCommand(smokeCmd)
}

func runSmoke(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 15 * time.Second}
	paths := []string{
		"/health",
		"/api/readiness",
		"/api/home-feed",
		"/api/inventory?rows=3",
		"/api/facets",
	}

	failures := 0
	for _, path := range paths {
		status, size, dur, err := probe(cmd.Context(), client, smokeBase+path)
		if err != nil {
			fmt.Printf("FAIL %-28s %v\n", path, err)
			failures++
			continue
		}
		ok := "ok  "
		if status >= 400 {
			ok = "FAIL"
			failures++
		}
		fmt.Printf("%s %-28s %d  %6d bytes  %s\n", ok, path, status, size, dur.Round(time.Millisecond))
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d checks failed", failures, len(paths))
	}
	fmt.Println("all checks passed")
	return nil
}

func probe(ctx context.Context, client *http.Client, url string) (status int, size int64, dur time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, 0, err
	}
	defer resp.Body.Close()
	size, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, size, time.Since(start), nil
}
