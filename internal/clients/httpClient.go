package clients

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// ErrPackageNotFound is returned when the index has no project with the requested name.
var ErrPackageNotFound = errors.New("package not found")

// StatusError is a non-success HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("client response error status: %d", e.StatusCode)
	}
	return fmt.Sprintf("client response error status: %d, %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= http.StatusInternalServerError
}

func newHttpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func newCircuitBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	cbSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    3 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a missing package is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPackageNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return gobreaker.NewCircuitBreaker(cbSettings)
}

func handleClientError(response *http.Response) error {
	if response.StatusCode == http.StatusNotFound {
		return ErrPackageNotFound
	}

	body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
	return &StatusError{StatusCode: response.StatusCode, Body: string(body)}
}
