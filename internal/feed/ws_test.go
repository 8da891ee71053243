package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"resale-price-engine/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func TestWSSourceDeliversBatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		msg := `{
			"batch_id": "batch-1",
			"quotes": [{
				"source_product_id": "sx-1",
				"ean": "4064536318152",
				"size": "42,5",
				"region": "EU",
				"price_type": "resale",
				"price_cents": 14000,
				"currency": "EUR",
				"in_stock": true,
				"observed_at": 1700000000000
			}]
		}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Errorf("write message: %v", err)
			return
		}

		// Keep the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	source := NewWSSource(domain.SourceStockX, wsURL, nil, nil)
	if source.Source() != domain.SourceStockX {
		t.Errorf("Source() = %v, want stockx", source.Source())
	}

	batches, err := source.Batches(ctx)
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}

	select {
	case batch := <-batches:
		if batch.BatchID != "batch-1" {
			t.Errorf("BatchID = %q, want batch-1", batch.BatchID)
		}
		if batch.SourceType != domain.SourceStockX {
			t.Errorf("SourceType = %q, want stockx", batch.SourceType)
		}
		if len(batch.Quotes) != 1 {
			t.Fatalf("quotes = %d, want 1", len(batch.Quotes))
		}
		q := batch.Quotes[0]
		if q.SourceProductID != "sx-1" || q.PriceCents != 14000 || q.Currency != "EUR" {
			t.Errorf("quote = %+v, fields not mapped", q)
		}
		if q.ProductRef.EAN != "4064536318152" {
			t.Errorf("EAN = %q, not mapped", q.ProductRef.EAN)
		}
		if q.SizeRaw != "42,5" || q.Region != "EU" {
			t.Errorf("size = (%q, %q), not mapped", q.SizeRaw, q.Region)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for batch")
	}
}

func TestWSSourceSkipsMalformedMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"batch_id": "good", "quotes": []}`))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	source := NewWSSource(domain.SourceGoat, wsURL, nil, nil)
	batches, err := source.Batches(ctx)
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}

	select {
	case batch := <-batches:
		// The malformed message is dropped, only the valid one arrives.
		if batch.BatchID != "good" {
			t.Errorf("BatchID = %q, want good", batch.BatchID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for batch")
	}
}

func TestWSSourceGeneratesBatchID(t *testing.T) {
	source := NewWSSource(domain.SourceKlekt, "ws://unused", nil, nil)

	batch, err := source.decodeBatch([]byte(`{"quotes": []}`))
	if err != nil {
		t.Fatalf("decodeBatch: %v", err)
	}
	if batch.BatchID == "" {
		t.Error("BatchID not generated for a message without one")
	}
}

func TestStaticSourceReplaysAndCloses(t *testing.T) {
	quotes := []*domain.RawQuote{
		{SourceType: domain.SourceEbay, SourceProductID: "eb-1", PriceCents: 9000, Currency: "EUR", ObservedAt: 1000},
	}

	source := NewStaticSource(domain.SourceEbay, quotes)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches, err := source.Batches(ctx)
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}

	batch, ok := <-batches
	if !ok {
		t.Fatal("channel closed before delivering the batch")
	}
	if batch.BatchID == "" {
		t.Error("BatchID not assigned")
	}
	if len(batch.Quotes) != 1 {
		t.Errorf("quotes = %d, want 1", len(batch.Quotes))
	}

	if _, ok := <-batches; ok {
		t.Error("expected channel to close after replay")
	}
}
