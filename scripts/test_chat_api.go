package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // pipeline runs can take minutes, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decode(body []byte) map[string]interface{} {
	var out map[string]interface{}
	json.Unmarshal(body, &out)
	return out
}

func turn(sessionID, message string) map[string]interface{} {
	color.Yellow("\n> %s", message)
	resp, body, err := sendRequest("POST", "/chat/v1/session/"+sessionID+"/turn", map[string]string{"message": message})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	out := decode(body)
	prettyPrint(out)
	return out
}

func main() {
	color.Cyan("Starting Chat Pipeline API Test\n")

	// 1. Create a session
	color.Yellow("\n1. Create session")
	resp, body, err := sendRequest("POST", "/chat/v1/session", map[string]string{"title": "Smoke test"})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	created := decode(body)
	prettyPrint(created)

	var sessionID string
	if data, ok := created["data"].(map[string]interface{}); ok {
		if id, ok := data["id"].(string); ok {
			sessionID = id
		}
	}
	if sessionID == "" {
		color.Red("No session id in response")
		os.Exit(1)
	}

	// 2. Qualify
	turn(sessionID, "hi")
	turn(sessionID, "I'm looking for tech influencers on TikTok")
	turn(sessionID, "US based, 50k+ followers, budget around $2000 per post")

	// 3. Conclude - this should hand the summary off to the pipeline
	out := turn(sessionID, "thanks")
	if data, ok := out["data"].(map[string]interface{}); ok {
		if ready, _ := data["process_ready"].(bool); ready {
			color.Cyan("\nSummary handed off, pipeline should pick it up")
		}
	}

	// 4. Poll status
	color.Yellow("\n4. Session status")
	resp, body, err = sendRequest("GET", "/chat/v1/session/"+sessionID+"/status", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 5. Fetch dataset (may 404 until the pipeline finishes)
	color.Yellow("\n5. Dataset")
	resp, body, err = sendRequest("GET", "/dataset/v1/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	color.Cyan("\nDone")
}
