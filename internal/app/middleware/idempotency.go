package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/domain/shared/fault"
)

// IdempotentCommand is implemented by commands that can be replayed safely
// under a client-supplied key.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

// ScopedIdempotencyKey prefixes a client key with the acting user. An empty
// client key stays empty so the command is not replayed.
func ScopedIdempotencyKey(actor, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return actor + ":" + key
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// IdempotencyOptions tune the replay window. Records older than TTL are
// ignored; a zero TTL keeps them forever.
type IdempotencyOptions struct {
	Codec ResultCodec
	TTL   time.Duration
	Now   func() time.Time
}

// Idempotency stores the outcome of idempotent commands by key (scoped to the
// command type) and replays it on retries. Classified errors are replayed
// with their kind; unclassified ones are not stored.
func Idempotency(store IdempotencyStore, opts IdempotencyOptions) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	codec := opts.Codec
	if codec == nil {
		codec = JSONResultCodec{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found && (opts.TTL <= 0 || now().Sub(rec.OccurredAt) < opts.TTL) {
				return replay(rec, idCmd, codec)
			}

			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{Key: key, OccurredAt: now().UTC()}
			if err != nil {
				kind, classified := fault.KindOf(err)
				if !classified {
					return nil, err
				}
				record.Error = err.Error()
				record.ErrorKind = string(kind)
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

func replay(rec IdempotencyRecord, cmd IdempotentCommand, codec ResultCodec) (any, error) {
	if rec.Error != "" {
		return nil, fault.New(fault.Kind(rec.ErrorKind), rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	return normalizePrototype(proto), nil
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
