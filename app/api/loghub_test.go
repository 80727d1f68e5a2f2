package api

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func TestLogHubCapacity(t *testing.T) {
	hub := NewLogHub(slog.NewTextHandler(io.Discard, nil), 3)
	logger := slog.New(hub)

	for i := 1; i <= 5; i++ {
		logger.Info(fmt.Sprintf("line %d", i))
	}

	entries := hub.After(0)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 buffered entries, got %d", len(entries))
	}
	if entries[0].Message != "line 3" {
		t.Errorf("Expected oldest lines to be evicted, got %q", entries[0].Message)
	}
	if entries[0].Seq != 3 || entries[2].Seq != 5 {
		t.Errorf("Expected sequence numbers to survive eviction, got %d..%d", entries[0].Seq, entries[2].Seq)
	}
	if hub.LastSeq() != 5 {
		t.Errorf("Expected last seq 5, got %d", hub.LastSeq())
	}
}

func TestLogHubWithAttrs(t *testing.T) {
	hub := NewLogHub(slog.NewTextHandler(io.Discard, nil), 10)
	logger := slog.New(hub).With("component", "scanner")

	logger.Info("started", "feeds", 3)

	entries := hub.After(0)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "started component=scanner feeds=3" {
		t.Errorf("Expected bound attrs in message, got %q", entries[0].Message)
	}
	if entries[0].Level != "INFO" {
		t.Errorf("Expected INFO level, got %q", entries[0].Level)
	}
}

func TestLogHubRespectsInnerLevel(t *testing.T) {
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})
	hub := NewLogHub(inner, 10)
	logger := slog.New(hub)

	logger.Debug("hidden")
	logger.Info("visible")

	entries := hub.After(0)
	if len(entries) != 1 {
		t.Fatalf("Expected debug line to be filtered, got %d entries", len(entries))
	}
	if entries[0].Message != "visible" {
		t.Errorf("Expected only the info line, got %q", entries[0].Message)
	}
}
