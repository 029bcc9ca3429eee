package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/RobsonDevCode/pyninja/internal/clients/mapper"
	"github.com/RobsonDevCode/pyninja/internal/clients/models"
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	vulnerabilitydatabases "github.com/RobsonDevCode/pyninja/internal/constants/vulnerabilityDatabases"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/sony/gobreaker"
)

const (
	githubPageSize = 100
	maxGithubPages = 10
)

type GithubAdvisoryClient struct {
	client              *http.Client
	cb                  *gobreaker.CircuitBreaker
	baseUrl             *url.URL
	personalAccessToken string
	retry               RetryPolicy
	logger              *slog.Logger
}

func NewGithubAdvisoryClient(config *configuration.Config, logger *slog.Logger) (*GithubAdvisoryClient, error) {
	baseUrl, err := url.Parse(config.GithubAdvisoryUrl)
	if err != nil {
		return nil, fmt.Errorf("error parsing base url to a url type, %w", err)
	}

	return &GithubAdvisoryClient{
		client:              newHttpClient(config.QueryTimeout()),
		cb:                  newCircuitBreaker("github-advisory-client", logger),
		baseUrl:             baseUrl,
		personalAccessToken: config.GithubToken,
		retry:               NewRetryPolicy(config),
		logger:              logger,
	}, nil
}

func (c *GithubAdvisoryClient) Name() string {
	return vulnerabilitydatabases.Github
}

func (c *GithubAdvisoryClient) GetVulnerabilities(ctx context.Context, packageName string) ([]scannermodels.VulnerabilityRecord, error) {
	var advisories []models.GithubAdvisory
	next := c.buildPackageQuery(packageName)

	for page := 0; page < maxGithubPages && next != ""; page++ {
		var results []models.GithubAdvisory
		var nextPage string
		err := c.retry.Do(ctx, c.logger, "github advisories "+packageName, func(ctx context.Context) error {
			pageResults, pageNext, err := c.getPage(ctx, next)
			results, nextPage = pageResults, pageNext
			return err
		})
		if err != nil {
			return nil, err
		}

		advisories = append(advisories, results...)
		next = nextPage
	}

	c.logger.Debug("github advisory query complete", "package", packageName, "advisories", len(advisories))
	return mapper.MapGithubAdvisories(packageName, advisories), nil
}

func (c *GithubAdvisoryClient) getPage(ctx context.Context, pageUrl string) ([]models.GithubAdvisory, string, error) {
	type page struct {
		advisories []models.GithubAdvisory
		next       string
	}

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageUrl, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}

		request.Header.Set("Accept", "application/vnd.github+json")
		request.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if c.personalAccessToken != "" {
			request.Header.Set("Authorization", "token "+c.personalAccessToken)
		}

		response, err := c.client.Do(request)
		if err != nil {
			return nil, fmt.Errorf("client response error: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, handleGithubClientError(response)
		}

		var results []models.GithubAdvisory
		if err := json.NewDecoder(response.Body).Decode(&results); err != nil {
			return nil, fmt.Errorf("failed to parse github advisories: %w", err)
		}

		return page{advisories: results, next: nextLink(response.Header.Get("Link"))}, nil
	})

	if err != nil {
		return nil, "", err
	}

	result, ok := cbResult.(page)
	if !ok {
		return nil, "", fmt.Errorf("unexpected response type when converting response")
	}

	return result.advisories, result.next, nil
}

func (c *GithubAdvisoryClient) buildPackageQuery(packageName string) string {
	query := url.Values{}
	query.Set("ecosystem", vulnerabilitydatabases.GithubEcosystem)
	query.Set("affects", packageName)
	query.Set("per_page", fmt.Sprint(githubPageSize))

	queryUrl := *c.baseUrl
	queryUrl.RawQuery = query.Encode()
	return queryUrl.String()
}

// nextLink extracts the rel="next" target of a Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}

		for _, attribute := range sections[1:] {
			if strings.TrimSpace(attribute) == `rel="next"` {
				return strings.Trim(strings.TrimSpace(sections[0]), "<>")
			}
		}
	}
	return ""
}

func handleGithubClientError(response *http.Response) error {
	if response.StatusCode == http.StatusNotFound {
		return ErrPackageNotFound
	}

	var clientError models.Error
	if err := json.NewDecoder(response.Body).Decode(&clientError); err != nil {
		return &StatusError{StatusCode: response.StatusCode}
	}

	return &StatusError{StatusCode: response.StatusCode, Body: clientError.Message}
}
