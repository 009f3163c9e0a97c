package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frontandrew/fleet/internal/infrastructure/fleetapi"
	"github.com/stretchr/testify/assert"
)

func TestRun_Vehicles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t0k3n", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    fleetapi.MockVehicles()[:1],
		})
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run([]string{"-api", srv.URL, "-token", "t0k3n", "vehicles"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "WX1001A")
	assert.Empty(t, stderr.String())
}

func TestRun_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tests := []struct {
		name     string
		args     []string
		code     int
		contains string
	}{
		{name: "без подстановки", args: []string{"-api", url, "dashboard"}, code: 1},
		{name: "с подстановкой", args: []string{"-api", url, "-fallback", "dashboard"}, code: 0, contains: "total_vehicles"},
		{name: "свободные по демо данным", args: []string{"-api", url, "-fallback", "availability", "2026-02-11", "2026-02-12"}, code: 0, contains: "WX1005E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(append([]string{"-timeout", "2s"}, tt.args...), &stdout, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Contains(t, stdout.String(), tt.contains)
			assert.Contains(t, stderr.String(), "network_error")
		})
	}
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "без команды", args: nil},
		{name: "неизвестная команда", args: []string{"trucks"}},
		{name: "неполный диапазон", args: []string{"availability", "2026-02-11"}},
		{name: "неверный диапазон", args: []string{"availability", "2026-02-12", "2026-02-11"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 2, run(tt.args, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}
