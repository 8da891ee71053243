package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/ingest"
)

// WSConfig configures WebSocket feed behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// BatchRate caps batches per second accepted from the feed; 0 disables.
	BatchRate float64
	// BatchBurst is the rate limiter burst size.
	BatchBurst int
}

// DefaultWSConfig returns default WebSocket feed configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		ReadTimeout:       60 * time.Second,
		BatchRate:         10,
		BatchBurst:        20,
	}
}

// wireQuote is the JSON shape a feed endpoint delivers per quote.
type wireQuote struct {
	SourceProductID string  `json:"source_product_id"`
	EAN             string  `json:"ean,omitempty"`
	SKU             string  `json:"sku,omitempty"`
	Name            string  `json:"name,omitempty"`
	Brand           string  `json:"brand,omitempty"`
	Size            string  `json:"size,omitempty"`
	Region          string  `json:"region,omitempty"`
	PriceType       string  `json:"price_type"`
	PriceCents      int64   `json:"price_cents"`
	Currency        string  `json:"currency"`
	InStock         bool    `json:"in_stock"`
	StockQuantity   *int64  `json:"stock_quantity,omitempty"`
	URL             string  `json:"url,omitempty"`
	SupplierRef     *string `json:"supplier_ref,omitempty"`
	ObservedAt      int64   `json:"observed_at"`
}

// wireBatch is one JSON message from a feed endpoint.
type wireBatch struct {
	BatchID string      `json:"batch_id,omitempty"`
	Quotes  []wireQuote `json:"quotes"`
}

// WSSource streams quote batches from a marketplace's websocket feed.
// Disconnects trigger reconnection with exponential backoff; the batch
// channel stays open across reconnects and closes only on context
// cancellation.
type WSSource struct {
	endpoint string
	source   domain.SourceType
	config   WSConfig
	limiter  *rate.Limiter
	logger   *log.Logger
}

// Compile-time interface check.
var _ ingest.BatchSource = (*WSSource)(nil)

// NewWSSource creates a websocket feed source.
func NewWSSource(source domain.SourceType, endpoint string, config *WSConfig, logger *log.Logger) *WSSource {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	var limiter *rate.Limiter
	if cfg.BatchRate > 0 {
		burst := cfg.BatchBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.BatchRate), burst)
	}

	return &WSSource{
		endpoint: endpoint,
		source:   source,
		config:   cfg,
		limiter:  limiter,
		logger:   logger,
	}
}

// Source identifies the marketplace this adapter covers.
func (s *WSSource) Source() domain.SourceType {
	return s.source
}

// Batches subscribes to the feed and returns the batch channel.
func (s *WSSource) Batches(ctx context.Context) (<-chan *domain.QuoteBatch, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to %s feed: %w", s.source, err)
	}

	out := make(chan *domain.QuoteBatch, 16)

	go func() {
		defer close(out)
		s.readLoop(ctx, conn, out)
	}()

	return out, nil
}

func (s *WSSource) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// readLoop reads batches until the context is cancelled, reconnecting on
// read failures with capped exponential backoff.
func (s *WSSource) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- *domain.QuoteBatch) {
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	reconnectDelay := s.config.ReconnectDelay

	for {
		if ctx.Err() != nil {
			return
		}

		if conn == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}

			var err error
			conn, err = s.dial(ctx)
			if err != nil {
				s.logger.Printf("feed %s: reconnect failed, retrying in %v: %v", s.source, reconnectDelay, err)
				reconnectDelay *= 2
				if reconnectDelay > s.config.MaxReconnectDelay {
					reconnectDelay = s.config.MaxReconnectDelay
				}
				continue
			}
			s.logger.Printf("feed %s: reconnected", s.source)
			reconnectDelay = s.config.ReconnectDelay
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Printf("feed %s: read failed, reconnecting: %v", s.source, err)
			conn.Close()
			conn = nil
			continue
		}

		batch, err := s.decodeBatch(data)
		if err != nil {
			s.logger.Printf("feed %s: dropping malformed message: %v", s.source, err)
			continue
		}

		select {
		case out <- batch:
		case <-ctx.Done():
			return
		}
	}
}

// decodeBatch converts one wire message into a domain batch.
func (s *WSSource) decodeBatch(data []byte) (*domain.QuoteBatch, error) {
	var wire wireBatch
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}

	batchID := wire.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	quotes := make([]*domain.RawQuote, 0, len(wire.Quotes))
	for _, q := range wire.Quotes {
		quotes = append(quotes, &domain.RawQuote{
			SourceType:      s.source,
			SourceProductID: q.SourceProductID,
			ProductRef: domain.ProductRef{
				EAN:   q.EAN,
				SKU:   q.SKU,
				Name:  q.Name,
				Brand: q.Brand,
			},
			SizeRaw:       q.Size,
			Region:        q.Region,
			PriceType:     domain.PriceType(q.PriceType),
			PriceCents:    q.PriceCents,
			Currency:      q.Currency,
			InStock:       q.InStock,
			StockQuantity: q.StockQuantity,
			SourceURL:     q.URL,
			SupplierRef:   q.SupplierRef,
			ObservedAt:    q.ObservedAt,
		})
	}

	return &domain.QuoteBatch{
		BatchID:    batchID,
		SourceType: s.source,
		Quotes:     quotes,
	}, nil
}
