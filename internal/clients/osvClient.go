package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/RobsonDevCode/pyninja/internal/clients/mapper"
	"github.com/RobsonDevCode/pyninja/internal/clients/models"
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	vulnerabilitydatabases "github.com/RobsonDevCode/pyninja/internal/constants/vulnerabilityDatabases"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/sony/gobreaker"
)

// osv pages large result sets; stop following tokens after this many pages
const maxOsvPages = 20

type OsvClient struct {
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	baseUrl *url.URL
	retry   RetryPolicy
	logger  *slog.Logger
}

func NewOsvClient(config *configuration.Config, logger *slog.Logger) (*OsvClient, error) {
	baseUrl, err := url.Parse(config.OsvUrl)
	if err != nil {
		return nil, fmt.Errorf("error parsing osv url to a url type, %w", err)
	}

	return &OsvClient{
		client:  newHttpClient(config.QueryTimeout()),
		cb:      newCircuitBreaker("osv-client", logger),
		baseUrl: baseUrl,
		retry:   NewRetryPolicy(config),
		logger:  logger,
	}, nil
}

func (c *OsvClient) Name() string {
	return vulnerabilitydatabases.Osv
}

func (c *OsvClient) GetVulnerabilities(ctx context.Context, packageName string) ([]scannermodels.VulnerabilityRecord, error) {
	var vulns []models.OsvVulnerability
	pageToken := ""

	for page := 0; page < maxOsvPages; page++ {
		var response *models.OsvQueryResponse
		err := c.retry.Do(ctx, c.logger, "osv query "+packageName, func(ctx context.Context) error {
			result, err := c.query(ctx, packageName, pageToken)
			response = result
			return err
		})
		if err != nil {
			return nil, err
		}

		vulns = append(vulns, response.Vulns...)
		if response.NextPageToken == "" {
			break
		}
		pageToken = response.NextPageToken
	}

	c.logger.Debug("osv query complete", "package", packageName, "vulnerabilities", len(vulns))
	return mapper.MapOsvVulnerabilities(packageName, vulns), nil
}

func (c *OsvClient) query(ctx context.Context, packageName string, pageToken string) (*models.OsvQueryResponse, error) {
	payload := models.OsvQueryRequest{
		Package: models.OsvPackage{
			Name:      packageName,
			Ecosystem: vulnerabilitydatabases.OsvEcosystem,
		},
		PageToken: pageToken,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl.String(), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}
		request.Header.Set("Content-Type", "application/json")

		response, err := c.client.Do(request)
		if err != nil {
			return nil, fmt.Errorf("client response error: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, handleClientError(response)
		}

		var result models.OsvQueryResponse
		if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to parse osv response: %w", err)
		}

		return &result, nil
	})

	if err != nil {
		return nil, err
	}

	result, ok := cbResult.(*models.OsvQueryResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	return result, nil
}
