package alert

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Record(t *testing.T) {
	tenant, user := uuid.New(), uuid.New()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fail := func(at time.Duration, fields ...string) Failure {
		return Failure{TenantID: tenant, UserID: user, Form: "invoice", Fields: fields, At: start.Add(at)}
	}

	t.Run("raises at threshold", func(t *testing.T) {
		d := NewDetector(DefaultConfig())
		assert.Nil(t, d.Record(fail(0, "due_date")))
		assert.Nil(t, d.Record(fail(time.Minute, "lines")))
		a := d.Record(fail(2*time.Minute, "due_date"))
		require.NotNil(t, a)
		assert.Equal(t, 3, a.Failures)
		assert.Equal(t, []string{"due_date", "lines"}, a.Fields)
		assert.Equal(t, start, a.WindowStart)
	})

	t.Run("failures outside the window do not count", func(t *testing.T) {
		d := NewDetector(DefaultConfig())
		assert.Nil(t, d.Record(fail(0)))
		assert.Nil(t, d.Record(fail(time.Minute)))
		assert.Nil(t, d.Record(fail(7*time.Minute)))
		assert.Nil(t, d.Record(fail(7*time.Minute+30*time.Second)))
		assert.NotNil(t, d.Record(fail(8*time.Minute)))
	})

	t.Run("cooldown suppresses repeated alerts", func(t *testing.T) {
		d := NewDetector(DefaultConfig())
		for i := 0; i < 3; i++ {
			d.Record(fail(time.Duration(i) * time.Second))
		}
		for i := 3; i < 6; i++ {
			assert.Nil(t, d.Record(fail(time.Duration(i)*time.Second)))
		}
		d.Record(fail(20 * time.Minute))
		d.Record(fail(20*time.Minute + time.Second))
		assert.NotNil(t, d.Record(fail(20*time.Minute+2*time.Second)))
	})

	t.Run("forms and users are tracked separately", func(t *testing.T) {
		d := NewDetector(DefaultConfig())
		d.Record(fail(0))
		d.Record(fail(time.Second))
		other := fail(2 * time.Second)
		other.Form = "quote"
		assert.Nil(t, d.Record(other))
		other.Form = "invoice"
		other.UserID = uuid.New()
		assert.Nil(t, d.Record(other))
	})
}

func TestDetector_Prune(t *testing.T) {
	d := NewDetector(DefaultConfig())
	now := time.Now()
	d.Record(Failure{TenantID: uuid.New(), UserID: uuid.New(), Form: "f", At: now})
	assert.Equal(t, 0, d.Prune(now.Add(time.Minute)))
	assert.Equal(t, 1, d.Prune(now.Add(time.Hour)))
}

func TestDetector_Concurrent(t *testing.T) {
	d := NewDetector(Config{Window: time.Hour, Threshold: 50, Cooldown: time.Hour})
	tenant, user := uuid.New(), uuid.New()
	var wg sync.WaitGroup
	alerts := make(chan *Alert, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if a := d.Record(Failure{TenantID: tenant, UserID: user, Form: "f", At: time.Now()}); a != nil {
				alerts <- a
			}
		}()
	}
	wg.Wait()
	close(alerts)
	assert.Len(t, alerts, 1)
}
