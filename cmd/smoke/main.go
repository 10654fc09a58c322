package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type check struct {
	name   string
	method string
	path   string
	body   any
	want   int
}

func main() {
	baseURL := flag.String("url", envOr("SMOKE_BASE_URL", "http://localhost:8080"), "server base URL")
	date := flag.String("date", time.Now().UTC().Format("2006-01-02"), "date to query")
	president := flag.String("president", os.Getenv("SMOKE_PRESIDENT_ID"), "president entity id")
	portfolio := flag.String("portfolio", os.Getenv("SMOKE_PORTFOLIO_ID"), "portfolio entity id")
	department := flag.String("department", os.Getenv("SMOKE_DEPARTMENT_ID"), "department entity id")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Minute}

	checks := []check{
		{"health", http.MethodGet, "/health", nil, http.StatusOK},
		{"prime minister", http.MethodPost, "/v1/organisation/prime-minister", map[string]string{"date": *date}, http.StatusOK},
		{"date is required", http.MethodPost, "/v1/organisation/prime-minister", map[string]string{}, http.StatusBadRequest},
	}
	if *president != "" {
		checks = append(checks, check{"active portfolios", http.MethodPost, "/v1/organisation/active-portfolio-list",
			map[string]string{"presidentId": *president, "date": *date}, http.StatusOK})
	}
	if *portfolio != "" {
		checks = append(checks, check{"departments by portfolio", http.MethodPost, "/v1/organisation/departments-by-portfolio/" + *portfolio,
			map[string]string{"date": *date}, http.StatusOK})
	}
	if *department != "" {
		checks = append(checks, check{"department history", http.MethodGet, "/v1/organisation/department-history/" + *department, nil, http.StatusOK})
	}

	fmt.Printf("Running %d smoke checks against %s\n", len(checks), *baseURL)
	failed := 0
	for i, c := range checks {
		fmt.Printf("%d. %s...\n", i+1, c.name)
		if err := run(client, *baseURL, c); err != nil {
			fmt.Printf("FAILED: %s: %v\n", c.name, err)
			failed++
			continue
		}
		fmt.Printf("PASSED: %s\n", c.name)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func run(client *http.Client, baseURL string, c check) error {
	var body io.Reader
	if c.body != nil {
		payload, err := json.Marshal(c.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(c.method, baseURL+c.path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != c.want {
		return fmt.Errorf("status %d, want %d: %s", resp.StatusCode, c.want, string(respBody))
	}
	fmt.Printf("   %s in %s: %s\n", resp.Status, time.Since(start).Round(time.Millisecond), truncate(respBody, 200))
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
