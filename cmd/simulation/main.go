package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"autoideas-be/pkg/events"
	pktNats "autoideas-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

const baseURL = "http://localhost:3000/api/idea/v1"

// Simplified DTOs for the script
type submitRequest struct {
	WorkshopID string  `json:"workshop_id"`
	SessionID  string  `json:"session_id"`
	Nickname   string  `json:"nickname"`
	QuestionID *string `json:"question_id,omitempty"`
	Transcript string  `json:"transcript"`
}

type submitResponse struct {
	Data struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	} `json:"data"`
	Message string `json:"message"`
}

var sampleTranscripts = []string{
	"we keep retyping member data on every renewal, it happens twice a day",
	"the renewal paperwork is a terrible problem, members wait for weeks",
	"it would be great to see a live dashboard of pending approvals",
	"I wish we had a single search box over all our policy documents",
	"approvals are slow because nobody knows who owns the decision",
}

func main() {
	workshopID := os.Getenv("SIM_WORKSHOP_ID")
	if workshopID == "" {
		log.Fatal("SIM_WORKSHOP_ID is required")
	}
	apiKey := os.Getenv("AUTOIDEAS_API_KEY")

	header := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	fail := color.New(color.FgRed)
	event := color.New(color.FgYellow)

	header.Println("=== AutoIdeas Pipeline Simulation ===")
	fmt.Printf("Workshop: %s\n\n", workshopID)

	// Listen for processed-idea events while we submit.
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	sub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		fail.Printf("NATS unavailable, running submit-only: %v\n", err)
	} else {
		defer sub.Close()
		err = sub.Subscribe("ideas.events.>", "simulation-client", func(_ context.Context, e events.Event) error {
			event.Printf("<- %s %v\n", e.EventType(), e.Payload())
			return nil
		})
		if err != nil {
			fail.Printf("Subscribe failed: %v\n", err)
		}
	}

	sessionID := fmt.Sprintf("sim-%s", uuid.New().String()[:8])
	qid := "q1"

	for i, transcript := range sampleTranscripts {
		fmt.Printf("-> submitting idea %d: %q\n", i+1, transcript)

		jobID, err := submit(apiKey, submitRequest{
			WorkshopID: workshopID,
			SessionID:  sessionID,
			Nickname:   "sim-bot",
			QuestionID: &qid,
			Transcript: transcript,
		})
		if err != nil {
			fail.Printf("   submit failed: %v\n", err)
			continue
		}
		ok.Printf("   queued as job %s\n", jobID)

		time.Sleep(500 * time.Millisecond)
	}

	header.Println("\nWaiting 15s for pipeline events...")
	time.Sleep(15 * time.Second)
}

func submit(apiKey string, payload submitRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	var res submitResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", err
	}
	return res.Data.JobID, nil
}
