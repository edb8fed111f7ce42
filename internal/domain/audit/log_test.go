package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLog(t *testing.T) {
	tenant := uuid.New()
	user := uuid.New()
	entity := uuid.New()
	changes := map[string]any{"status": "sent"}

	l, err := NewLog(tenant, "sent", "invoice", &entity, changes, Source{UserID: &user, UserAgent: strings.Repeat("x", 600)}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, tenant, l.TenantID)
	assert.Equal(t, &user, l.UserID)
	assert.Len(t, l.UserAgent, 500)

	changes["status"] = "paid"
	assert.Equal(t, "sent", l.Changes["status"], "changes are copied")

	_, err = NewLog(tenant, " ", "invoice", nil, nil, Source{}, time.Now())
	assert.Error(t, err)
	_, err = NewLog(tenant, "sent", "", nil, nil, Source{}, time.Now())
	assert.Error(t, err)
}
