package reportstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/lunarfit/coach-api/internal/domain/coach"
)

// ValkeyStore caches generated reports in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new cache backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "coach"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, userID int64) (coach.Report, bool, error) {
	cmd := s.client.B().Get().Key(s.reportKey(userID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return coach.Report{}, false, nil
		}
		return coach.Report{}, false, err
	}
	var report coach.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return coach.Report{}, false, err
	}
	return report, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, userID int64, report coach.Report, ttl time.Duration) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.reportKey(userID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) reportKey(userID int64) string {
	return fmt.Sprintf("%s:report:%d", s.prefix, userID)
}

var _ coach.ReportCache = (*ValkeyStore)(nil)
