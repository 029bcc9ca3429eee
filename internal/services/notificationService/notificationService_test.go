package notificationservice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	notificationservice "github.com/RobsonDevCode/pyninja/internal/services/notificationService"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report() scannermodels.RunReport {
	return scannermodels.RunReport{
		Metadata: scannermodels.RunMetadata{ManifestPath: "requirements.txt"},
		Summary:  scannermodels.ReportSummary{TotalPackages: 4, VulnerabilityCount: 2},
		Flagged:  scannermodels.FlaggedPackages{Vulnerable: []string{"requests", "urllib3"}},
	}
}

func TestNotifyReportPostsWebhook(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := notificationservice.NewSlackNotifier(server.URL).NotifyReport(context.Background(), report())

	require.NoError(t, err)
	assert.Contains(t, received["text"], "*Vulnerabilities*: 2")
	assert.Contains(t, received["text"], "requests, urllib3")
}

func TestNotifyReportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	assert.Error(t, notificationservice.NewSlackNotifier(server.URL).NotifyReport(context.Background(), report()))
	assert.Error(t, notificationservice.NewSlackNotifier("").NotifyReport(context.Background(), report()))
}
