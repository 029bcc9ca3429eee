package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/RobsonDevCode/pyninja/internal/clients/models"
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
	"github.com/sony/gobreaker"
	"golang.org/x/net/html"
)

type PypiClientService interface {
	GetPackageMetadata(ctx context.Context, packageName string) (*models.PackageMetadata, error)
}

type PypiClient struct {
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	baseUrl *url.URL
	retry   RetryPolicy
	logger  *slog.Logger
}

func NewPypiClient(config *configuration.Config, logger *slog.Logger) (*PypiClient, error) {
	baseUrl, err := url.Parse(strings.TrimSuffix(config.PypiUrl, "/"))
	if err != nil {
		return nil, fmt.Errorf("error parsing pypi url to a url type, %w", err)
	}

	return &PypiClient{
		client:  newHttpClient(config.QueryTimeout()),
		cb:      newCircuitBreaker("pypi-client", logger),
		baseUrl: baseUrl,
		retry:   NewRetryPolicy(config),
		logger:  logger,
	}, nil
}

// GetPackageMetadata reads the JSON API and falls back to the simple index, which
// only yields the release list.
func (c *PypiClient) GetPackageMetadata(ctx context.Context, packageName string) (*models.PackageMetadata, error) {
	var project *models.PypiProject
	err := c.retry.Do(ctx, c.logger, "pypi json "+packageName, func(ctx context.Context) error {
		result, err := c.getProject(ctx, packageName)
		project = result
		return err
	})
	if err == nil {
		return MapPypiProject(project), nil
	}

	if errors.Is(err, ErrPackageNotFound) || ctx.Err() != nil {
		return nil, err
	}

	c.logger.Debug("pypi json api failed, trying simple index", "package", packageName, "error", err)

	var metadata *models.PackageMetadata
	simpleErr := c.retry.Do(ctx, c.logger, "pypi simple "+packageName, func(ctx context.Context) error {
		result, err := c.getSimpleIndex(ctx, packageName)
		metadata = result
		return err
	})
	if simpleErr != nil {
		return nil, fmt.Errorf("pypi json api: %w; simple index: %w", err, simpleErr)
	}

	return metadata, nil
}

func (c *PypiClient) getProject(ctx context.Context, packageName string) (*models.PypiProject, error) {
	endpoint := c.baseUrl.JoinPath("pypi", packageName, "json").String()

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}
		request.Header.Set("Accept", "application/json")

		response, err := c.client.Do(request)
		if err != nil {
			return nil, fmt.Errorf("client response error: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, handleClientError(response)
		}

		var project models.PypiProject
		if err := json.NewDecoder(response.Body).Decode(&project); err != nil {
			return nil, fmt.Errorf("failed to parse pypi response: %w", err)
		}

		return &project, nil
	})

	if err != nil {
		return nil, err
	}

	project, ok := cbResult.(*models.PypiProject)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	return project, nil
}

func (c *PypiClient) getSimpleIndex(ctx context.Context, packageName string) (*models.PackageMetadata, error) {
	endpoint := c.baseUrl.JoinPath("simple", extensions.NormalizeName(packageName)).String() + "/"

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}
		request.Header.Set("Accept", "text/html")

		response, err := c.client.Do(request)
		if err != nil {
			return nil, fmt.Errorf("client response error: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, handleClientError(response)
		}

		return ParseSimpleIndex(packageName, response.Body)
	})

	if err != nil {
		return nil, err
	}

	metadata, ok := cbResult.(*models.PackageMetadata)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	return metadata, nil
}

// MapPypiProject flattens a JSON API response. A release counts as yanked when every
// file of it is yanked.
func MapPypiProject(project *models.PypiProject) *models.PackageMetadata {
	metadata := &models.PackageMetadata{
		Name:           project.Info.Name,
		Summary:        project.Info.Summary,
		Description:    project.Info.Description,
		Keywords:       project.Info.Keywords,
		License:        project.Info.License,
		RequiresPython: project.Info.RequiresPython,
		Classifiers:    project.Info.Classifiers,
		ProjectUrls:    project.Info.ProjectUrls,
	}

	if metadata.ProjectUrls == nil && project.Info.HomePage != "" {
		metadata.ProjectUrls = map[string]string{"Homepage": project.Info.HomePage}
	}

	for version, files := range project.Releases {
		metadata.Versions = append(metadata.Versions, version)

		yanked := len(files) > 0
		for _, file := range files {
			if !file.Yanked {
				yanked = false
			}
			if file.UploadTime.After(metadata.LastRelease) {
				metadata.LastRelease = file.UploadTime
			}
		}
		if yanked {
			metadata.YankedVersions = append(metadata.YankedVersions, version)
		}
	}

	if len(metadata.Versions) == 0 && project.Info.Version != "" {
		metadata.Versions = []string{project.Info.Version}
	}

	sortVersions(metadata.Versions)
	sortVersions(metadata.YankedVersions)
	return metadata
}

// ParseSimpleIndex reads a PEP 503 project page and recovers versions from file names.
func ParseSimpleIndex(packageName string, body io.Reader) (*models.PackageMetadata, error) {
	tokenizer := html.NewTokenizer(body)
	seen := map[string]bool{}
	yankedFiles := map[string]int{}
	files := map[string]int{}

	metadata := &models.PackageMetadata{Name: packageName, Partial: true}

	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to parse simple index: %w", err)
			}

			for version := range seen {
				metadata.Versions = append(metadata.Versions, version)
				if yankedFiles[version] == files[version] {
					metadata.YankedVersions = append(metadata.YankedVersions, version)
				}
			}
			sortVersions(metadata.Versions)
			sortVersions(metadata.YankedVersions)
			return metadata, nil

		case html.StartTagToken:
			name, hasAttributes := tokenizer.TagName()
			if string(name) != "a" {
				continue
			}

			yanked := false
			for hasAttributes {
				var key, value []byte
				key, value, hasAttributes = tokenizer.TagAttr()
				switch string(key) {
				case "data-yanked":
					yanked = true
				case "data-requires-python":
					if metadata.RequiresPython == "" {
						metadata.RequiresPython = html.UnescapeString(string(value))
					}
				}
			}

			if tokenizer.Next() != html.TextToken {
				continue
			}

			version := versionFromFileName(strings.TrimSpace(string(tokenizer.Text())))
			if version == "" {
				continue
			}

			seen[version] = true
			files[version]++
			if yanked {
				yankedFiles[version]++
			}
		}
	}
}

var distributionSuffixes = []string{".tar.gz", ".tar.bz2", ".tgz", ".zip", ".egg"}

func versionFromFileName(fileName string) string {
	if strings.HasSuffix(fileName, ".whl") {
		parts := strings.Split(strings.TrimSuffix(fileName, ".whl"), "-")
		if len(parts) >= 5 && versioning.IsValid(parts[1]) {
			return parts[1]
		}
		return ""
	}

	for _, suffix := range distributionSuffixes {
		if !strings.HasSuffix(fileName, suffix) {
			continue
		}

		stem := strings.TrimSuffix(fileName, suffix)
		if suffix == ".egg" {
			// name-version-pyX.Y.egg
			if i := strings.LastIndex(stem, "-py"); i > 0 {
				stem = stem[:i]
			}
		}

		i := strings.LastIndex(stem, "-")
		if i < 0 {
			return ""
		}
		if version := stem[i+1:]; versioning.IsValid(version) {
			return version
		}
	}

	return ""
}

func sortVersions(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return versioning.Compare(versions[i], versions[j]) < 0
	})
}
