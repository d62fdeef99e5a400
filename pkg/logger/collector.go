package logger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Publisher ships aggregated log batches. Satisfied by the Kafka producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

type CollectorConfig struct {
	FlushInterval  time.Duration // periodic flush, e.g. 30s
	CountThreshold int           // flush early once this many distinct entries pile up
	Topic          string
	Publisher      Publisher
}

// LogEntry is one deduplicated error with occurrence counts.
type LogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Collector batches error logs by (level, message) and publishes them
// periodically so a noisy failure becomes one counted record, not a flood.
type Collector struct {
	cfg     *CollectorConfig
	mu      sync.Mutex
	entries map[string]*LogEntry
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewCollector(cfg *CollectorConfig) *Collector {
	c := &Collector{
		cfg:     cfg,
		entries: make(map[string]*LogEntry),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

func (c *Collector) Record(level, message string, fields []Field) {
	now := time.Now()
	key := level + "|" + message

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.Count++
		entry.LastSeen = now
	} else {
		fieldMap := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			if err, ok := f.Value.(error); ok {
				fieldMap[f.Key] = err.Error()
				continue
			}
			fieldMap[f.Key] = f.Value
		}
		c.entries[key] = &LogEntry{
			Level:     level,
			Message:   message,
			Fields:    fieldMap,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(c.entries) >= c.cfg.CountThreshold {
		c.flushLocked()
	}
}

func (c *Collector) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
		case <-c.done:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
			return
		}
	}
}

func (c *Collector) flushLocked() {
	if len(c.entries) == 0 {
		return
	}

	batch := make([]LogEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		batch = append(batch, *entry)
	}
	c.entries = make(map[string]*LogEntry)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.cfg.Publisher.Publish(ctx, c.cfg.Topic, nil, batch); err != nil {
			fmt.Printf("log collector publish failed: %v\n", err)
		}
	}()
}

func (c *Collector) Close() {
	close(c.done)
	c.wg.Wait()
}
