package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

// instanceRecord is the stored form of an instance; the address lives in the key
type instanceRecord struct {
	ContractName string          `json:"contractName"`
	ModuleRef    model.ModuleRef `json:"moduleRef"`
	State        json.RawMessage `json:"state"`
}

type credentialRecord struct {
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Instance operations

func (s *Storage) GetInstance(ctx context.Context, addr model.ContractAddress) (*model.Instance, error) {
	data, err := s.client.Get(ctx, instanceKey(addr)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrInstanceNotFound
		}
		return nil, err
	}

	var rec instanceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &model.Instance{
		Address:      addr,
		ContractName: rec.ContractName,
		ModuleRef:    rec.ModuleRef,
		State:        []byte(rec.State),
	}, nil
}

// NextContractIndex allocates indexes from 0 using INCR
func (s *Storage) NextContractIndex(ctx context.Context) (uint64, error) {
	n, err := s.client.Incr(ctx, contractSeqKey()).Result()
	if err != nil {
		return 0, err
	}
	return uint64(n - 1), nil
}

// Commit applies the batch in a single MULTI/EXEC transaction
func (s *Storage) Commit(ctx context.Context, batch *storage.Batch) error {
	if batch.Empty() {
		return nil
	}

	instances := make(map[string][]byte, len(batch.Instances))
	for _, inst := range batch.Instances {
		data, err := json.Marshal(instanceRecord{
			ContractName: inst.ContractName,
			ModuleRef:    inst.ModuleRef,
			State:        json.RawMessage(inst.State),
		})
		if err != nil {
			return err
		}
		instances[instanceKey(inst.Address)] = data
	}

	events := make(map[string][]any)
	var order []string
	for _, ev := range batch.Events {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		key := eventsKey(ev.Contract)
		if _, seen := events[key]; !seen {
			order = append(order, key)
		}
		events[key] = append(events[key], data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, data := range instances {
			pipe.Set(ctx, key, data, 0)
		}
		for _, key := range order {
			pipe.RPush(ctx, key, events[key]...)
			if s.cfg.MaxEventsPerContract > 0 {
				pipe.LTrim(ctx, key, -s.cfg.MaxEventsPerContract, -1)
			}
		}
		return nil
	})
	return err
}

// Event operations

func (s *Storage) ListEvents(ctx context.Context, addr model.ContractAddress, limit int) ([]model.Event, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := s.client.LRange(ctx, eventsKey(addr), start, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(raw))
	for _, item := range raw {
		var ev model.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	data, err := json.Marshal(credentialRecord{
		PasswordHash: cred.PasswordHash,
		CreatedAt:    cred.CreatedAt,
	})
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, credentialKey(cred.Account), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrAccountExists
	}
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, account model.AccountID) (*model.Credential, error) {
	data, err := s.client.Get(ctx, credentialKey(account)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var rec credentialRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &model.Credential{
		Account:      account,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
