package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var httpClient = &http.Client{Timeout: 60 * time.Second}

func sendRequest(method, path string, body interface{}) (*envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: %s", resp.Status, string(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

func openSession(userID string) (string, error) {
	env, err := sendRequest(http.MethodPost, "/graph/sessions", map[string]string{"user_id": userID})
	if err != nil {
		return "", err
	}
	var data struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	return data.SessionID, nil
}

func get(session string, paths ...json.RawMessage) (json.RawMessage, error) {
	env, err := sendRequest(http.MethodPost, "/graph/"+session+"/get", map[string]interface{}{"paths": paths})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func call(session string, path json.RawMessage, args ...interface{}) (json.RawMessage, error) {
	if args == nil {
		args = []interface{}{}
	}
	env, err := sendRequest(http.MethodPost, "/graph/"+session+"/call", map[string]interface{}{"path": path, "args": args})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func prettyPrint(raw json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(buf.String())
}

func step(format string, a ...interface{}) {
	color.Yellow("\n"+format, a...)
}
