package telemetry

import (
	"context"
	"testing"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "")
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() failed: %v", err)
	}
}

func TestTracerStartsSpans(t *testing.T) {
	_, span := Tracer("test").Start(context.Background(), "test.span")
	defer span.End()
	if span == nil {
		t.Fatal("Start() returned nil span")
	}
}
