package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type solveRequest struct {
	Term   string          `json:"term,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Err  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		base       string
		term       string
		overrides  string
		email      string
		password   string
		timeout    time.Duration
		expectFail bool
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&term, "term", "", "Term to solve (empty uses the server default)")
	flag.StringVar(&overrides, "config", "", "Inline JSON solver config overrides")
	flag.StringVar(&email, "email", "admin@example.com", "Login email")
	flag.StringVar(&password, "password", "admin", "Login password")
	flag.DurationVar(&timeout, "timeout", 90*time.Second, "HTTP client timeout")
	flag.BoolVar(&expectFail, "expect-reject", false, "Treat a solver rejection as success")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	base = strings.TrimRight(base, "/")

	token, err := login(client, base, email, password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}

	req := solveRequest{Term: term}
	if overrides != "" {
		if !json.Valid([]byte(overrides)) {
			log.Fatalf("invalid -config JSON: %s", overrides)
		}
		req.Config = json.RawMessage(overrides)
	}

	status, body, dur, err := postSolve(client, base, token, req)
	if err != nil {
		log.Fatalf("solve request failed: %v", err)
	}

	fmt.Printf("POST /solve -> %d in %s\n", status, dur)

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Fatalf("unexpected response body: %s", body)
	}

	switch {
	case status == http.StatusOK:
		fmt.Printf("persisted: %s\n", env.Data)
		if expectFail {
			fmt.Println("expected a rejection but the solve succeeded")
			os.Exit(1)
		}
	case env.Err != nil && env.Err.Code == "SOLVER_REJECTED":
		fmt.Printf("rejected: %s\n", env.Err.Message)
		if !expectFail {
			os.Exit(1)
		}
	default:
		if env.Err != nil {
			fmt.Printf("error: [%s] %s\n", env.Err.Code, env.Err.Message)
		} else {
			fmt.Printf("error body: %s\n", body)
		}
		os.Exit(1)
	}
}

func login(client *http.Client, base, email, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(base+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var env struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	if env.Data.AccessToken == "" {
		return "", fmt.Errorf("no token in response: %s", body)
	}
	return env.Data.AccessToken, nil
}

func postSolve(client *http.Client, base, token string, solve solveRequest) (int, []byte, time.Duration, error) {
	payload, err := json.Marshal(solve)
	if err != nil {
		return 0, nil, 0, err
	}

	req, err := http.NewRequest(http.MethodPost, base+"/api/v1/solve", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}
