package pricer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Predict(t *testing.T) {
	var gotPath string
	var gotBody predictRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price": 129.99}`))
	}))
	defer server.Close()

	client := NewFTClient(server.Client(), server.URL)

	price, err := client.Predict(context.Background(), "A gaming laptop")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if price != 129.99 {
		t.Errorf("Expected price 129.99, got %v", price)
	}
	if gotPath != "/ft/price" {
		t.Errorf("Expected path /ft/price, got %s", gotPath)
	}
	if gotBody.Description != "A gaming laptop" {
		t.Errorf("Unexpected description: %s", gotBody.Description)
	}
}

func TestClient_Paths(t *testing.T) {
	tests := []struct {
		name     string
		client   *Client
		wantPath string
		wantName string
	}{
		{"ft", NewFTClient(http.DefaultClient, "http://example.com"), "/ft/price", "ft_pricer"},
		{"rag", NewRAGClient(http.DefaultClient, "http://example.com"), "/rag/price", "rag_pricer"},
		{"xgb", NewXGBClient(http.DefaultClient, "http://example.com"), "/xgb/price", "xgb_pricer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.client.path != tt.wantPath {
				t.Errorf("Expected path %s, got %s", tt.wantPath, tt.client.path)
			}
			if tt.client.Name() != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, tt.client.Name())
			}
		})
	}
}

func TestClient_Predict_RemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewRAGClient(server.Client(), server.URL)

	_, err := client.Predict(context.Background(), "A gaming laptop")
	if err == nil {
		t.Fatal("Expected error when the remote service fails")
	}
}

func TestClient_Predict_EmptyDescription(t *testing.T) {
	client := NewXGBClient(http.DefaultClient, "http://example.com")

	_, err := client.Predict(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error for empty description")
	}
}

func TestClient_Predict_NegativePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": -5.0}`))
	}))
	defer server.Close()

	client := NewFTClient(server.Client(), server.URL)

	_, err := client.Predict(context.Background(), "A gaming laptop")
	if err == nil {
		t.Fatal("Expected error for negative price")
	}
}

func TestClient_Predict_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`oops`))
	}))
	defer server.Close()

	client := NewFTClient(server.Client(), server.URL)

	_, err := client.Predict(context.Background(), "A gaming laptop")
	if err == nil {
		t.Fatal("Expected error for malformed response")
	}
}
