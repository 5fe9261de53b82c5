package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// send performs a request with a JSON body.
func (c *HTTPClient) send(method, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	return c.send(http.MethodPost, url, body)
}

// Put performs a PUT request with JSON body.
func (c *HTTPClient) Put(url string, body interface{}) (*http.Response, error) {
	return c.send(http.MethodPut, url, body)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// registerPatients upserts every synthetic patient profile.
func registerPatients(ctx context.Context, config *Config, patients []Patient, stats *Stats) error {
	log.Printf("🏥 Registering %d patients...", len(patients))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/patients"

	for _, p := range patients {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during patient registration: %w", ctx.Err())
		default:
		}

		resp, err := client.Put(url, p.Profile)
		if err != nil {
			return fmt.Errorf("failed to register patient %s: %w", p.Profile.PatientID, err)
		}
		body, _ := readResponseBody(resp)
		if resp.StatusCode != StatusOK {
			return fmt.Errorf("patient registration failed with HTTP %d: %s", resp.StatusCode, string(body))
		}
		stats.PatientsRegistered++
	}

	log.Printf("✅ Registered %d patients", stats.PatientsRegistered)
	return nil
}

// submitConversations submits conversations concurrently using worker pools.
func submitConversations(ctx context.Context, config *Config, conversations []Conversation, stats *Stats) error {
	log.Printf("📤 Submitting %d conversations with %d workers...", len(conversations), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/conversations"

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	convChan := make(chan Conversation, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for conv := range convChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleConversation(client, url, conv)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						acc := atomic.LoadInt64(&accepted)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (accepted: %d, duplicate: %d, failed: %d)",
								total, len(conversations), acc, dup, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (accepted: %d, duplicate: %d, failed: %d)",
								total, len(conversations), acc, dup, fail)
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(convChan)
		for _, conv := range conversations {
			select {
			case <-ctx.Done():
				return
			case convChan <- conv:
			}
		}
	}()

	wg.Wait()

	if !config.Verbose {
		fmt.Println()
	}

	stats.ConversationsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ConversationsAccepted = int(atomic.LoadInt64(&accepted))
	stats.ConversationsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ConversationsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Conversation submission completed:
   Accepted: %d
   Duplicate: %d
   Failed: %d
`, stats.ConversationsAccepted, stats.ConversationsDuplicate, stats.ConversationsFailed)

	return nil
}

// submitSingleConversation submits a single conversation and returns the result.
func submitSingleConversation(client *HTTPClient, url string, conv Conversation) string {
	resp, err := client.Post(url, conv)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return "accepted"
	case StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}
