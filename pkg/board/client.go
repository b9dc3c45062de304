package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Card is the payload for one sticky note.
type Card struct {
	Content   string
	Shape     string
	FillColor string
	X         float64
	Y         float64
}

// CardInfo is the board's record of a created sticky note.
type CardInfo struct {
	ID string `json:"id"`
}

// APIError carries the upstream status so callers can distinguish permanent
// rejections from transient failures.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("board api error: status %d, body %s", e.StatusCode, e.Body)
}

// Permanent reports whether retrying is pointless. 429 is the one 4xx worth
// retrying.
func (e *APIError) Permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// Client talks to a Miro-compatible board API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.miro.com/v2"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type stickyNoteRequest struct {
	Data     stickyNoteData  `json:"data"`
	Style    stickyNoteStyle `json:"style"`
	Position position        `json:"position"`
}

type stickyNoteData struct {
	Content string `json:"content"`
	Shape   string `json:"shape"`
}

type stickyNoteStyle struct {
	FillColor         string `json:"fillColor"`
	TextAlign         string `json:"textAlign"`
	TextAlignVertical string `json:"textAlignVertical"`
}

type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreateStickyNote posts one card to the board and returns its id.
func (c *Client) CreateStickyNote(ctx context.Context, boardID string, card Card) (*CardInfo, error) {
	shape := card.Shape
	if shape == "" {
		shape = "square"
	}

	body, err := json.Marshal(stickyNoteRequest{
		Data: stickyNoteData{Content: card.Content, Shape: shape},
		Style: stickyNoteStyle{
			FillColor:         card.FillColor,
			TextAlign:         "center",
			TextAlignVertical: "middle",
		},
		Position: position{X: card.X, Y: card.Y},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize card: %w", err)
	}

	endpoint := fmt.Sprintf("%s/boards/%s/sticky_notes", c.baseURL, boardID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call board api: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusCreated {
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(resBody)}
	}

	var info CardInfo
	if err := json.Unmarshal(resBody, &info); err != nil {
		return nil, fmt.Errorf("failed to decode board response: %w", err)
	}
	return &info, nil
}
