package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ServiceCall is the event published for every requested service call.
type ServiceCall struct {
	Domain        string `json:"domain"`
	Service       string `json:"service"`
	RequestedAtMs int64  `json:"requested_at_ms"`
}

// Client provides instance-scoped Redis operations.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb          *redis.Client
	instanceName string
	now          func() time.Time
}

// NewClient creates a client for the given instance.
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
		now:          time.Now,
	}, nil
}

// NewClientFromURL parses a redis:// URL and creates a client for the given instance.
func NewClientFromURL(url, instanceName string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewClient(opts, instanceName)
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Call publishes a service call event for domain.service.
// Delivery is at-most-once; a call with no subscribers is not an error.
func (c *Client) Call(ctx context.Context, domain, service string) error {
	payload, err := json.Marshal(ServiceCall{
		Domain:        domain,
		Service:       service,
		RequestedAtMs: c.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal service call: %w", err)
	}

	channel := ServiceCallsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish service call: %w", err)
	}
	return nil
}

// Register records entityID as the entity for (domain, platform, uniqueID)
// and writes the reverse index. Re-registering overwrites.
func (c *Client) Register(ctx context.Context, domain, platform, uniqueID, entityID string) error {
	if domain == "" || platform == "" || uniqueID == "" || entityID == "" {
		return errors.New("register: domain, platform, unique id and entity id are required")
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, RegistryKey(c.instanceName, domain, platform), uniqueID, entityID)
		pipe.HSet(ctx, EntityKey(c.instanceName, entityID), map[string]any{
			"domain":    domain,
			"platform":  platform,
			"unique_id": uniqueID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register entity: %w", err)
	}
	return nil
}

// Lookup returns the entity id registered for (domain, platform, uniqueID).
// The boolean is false when nothing is registered.
func (c *Client) Lookup(ctx context.Context, domain, platform, uniqueID string) (string, bool, error) {
	entityID, err := c.rdb.HGet(ctx, RegistryKey(c.instanceName, domain, platform), uniqueID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up entity: %w", err)
	}
	return entityID, true, nil
}

// Remove deletes an entity and its registry entry. Removing an unknown
// entity is a no-op.
func (c *Client) Remove(ctx context.Context, entityID string) error {
	entityKey := EntityKey(c.instanceName, entityID)

	fields, err := c.rdb.HGetAll(ctx, entityKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read entity: %w", err)
	}
	if len(fields) == 0 {
		return nil
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, RegistryKey(c.instanceName, fields["domain"], fields["platform"]), fields["unique_id"])
		pipe.Del(ctx, entityKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove entity: %w", err)
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to service calls.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *ServiceCall
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of service calls.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *ServiceCall {
	return s.events
}

// Errors returns the channel of subscription errors.
// Malformed messages are reported here and skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeServiceCalls subscribes to service calls for this instance.
// The subscription is confirmed by Redis before this method returns, so
// calls published afterwards are delivered.
//
// Events are delivered on a buffered channel (size 10).
func (c *Client) SubscribeServiceCalls(ctx context.Context) (*Subscription, error) {
	channel := ServiceCallsChannel(c.instanceName)
	pubsub := c.rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	eventsChan := make(chan *ServiceCall, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var call ServiceCall
				if err := json.Unmarshal([]byte(msg.Payload), &call); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal service call: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &call:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
