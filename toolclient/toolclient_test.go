package toolclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIdempotencyKeyIsStableAndContentSensitive(t *testing.T) {
	a := IdempotencyKey("Weather_Conditions", "Seattle")
	b := IdempotencyKey("Weather_Conditions", "Seattle")
	c := IdempotencyKey("Weather_Conditions", "Portland")
	if a != b {
		t.Fatalf("expected stable key for identical input")
	}
	if a == c {
		t.Fatalf("expected different keys for different input")
	}
}

func TestURLFetchReturnsBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello from the page"))
	}))
	defer srv.Close()

	fetch := NewURLFetch()
	out, err := fetch.Call(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != "hello from the page" {
		t.Fatalf("unexpected body: %q", out)
	}
}

func TestURLFetchErrorsOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetch := NewURLFetch()
	if _, err := fetch.Call(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestWeatherParsesConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Seattle","main":{"temp":55.2,"humidity":80},"weather":[{"description":"light rain"}]}`))
	}))
	defer srv.Close()

	weather, err := NewWeather("test-key", WithWeatherBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("construct weather: %v", err)
	}
	out, err := weather.Call(context.Background(), "Seattle")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty formatted result")
	}
}

func TestNewWeatherRequiresAPIKey(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")
	if _, err := NewWeather(""); err == nil {
		t.Fatalf("expected error when no API key is available")
	}
}

func TestPricingReportsProductCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"formatVersion":"v1.0","products":{"sku1":{},"sku2":{}}}`))
	}))
	defer srv.Close()

	pricing := NewPricing(WithPricingBaseURL(srv.URL))
	out, err := pricing.Call(context.Background(), "AmazonEC2")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty result")
	}
}
