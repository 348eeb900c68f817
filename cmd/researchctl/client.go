package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func postJSON(apiURL, path string, payload map[string]interface{}, out io.Writer) error {
	body, _ := json.Marshal(payload)
	resp, err := http.Post(apiURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}

func runResearch(apiURL, query, sessionID string, numSources int, out io.Writer) error {
	payload := map[string]interface{}{"query": query}
	if sessionID != "" {
		payload["sessionId"] = sessionID
	}
	if numSources > 0 {
		payload["numSources"] = numSources
	}
	return postJSON(apiURL, "/v0/research", payload, out)
}

func runFollowUp(apiURL, query, sessionID string, out io.Writer) error {
	return postJSON(apiURL, "/v0/follow-up", map[string]interface{}{
		"query":     query,
		"sessionId": sessionID,
	}, out)
}

func runSessionsList(apiURL string, out io.Writer) error {
	resp, err := http.Get(apiURL + "/v0/sessions")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}

func runSessionsDelete(apiURL, sessionID string, out io.Writer) error {
	req, err := http.NewRequest(http.MethodDelete, apiURL+"/v0/sessions/"+sessionID, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	fmt.Fprintf(out, "deleted %s\n", sessionID)
	return nil
}
