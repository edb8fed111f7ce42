package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates company client successfully", func(t *testing.T) {
		c, err := NewClient(tenantID, " cl-001 ", " Acme ", "")
		require.NoError(t, err)
		assert.Equal(t, "CL-001", c.Code)
		assert.Equal(t, "Acme", c.Name)
		assert.Equal(t, ClientTypeCompany, c.Type)
		assert.Equal(t, StatusActive, c.Status)
		assert.Equal(t, tenantID, c.TenantID)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeClientCreated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewClient(tenantID, "", "Acme", ClientTypeCompany)
		assert.Error(t, err)
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		_, err := NewClient(tenantID, "CL 001", "Acme", ClientTypeCompany)
		assert.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewClient(tenantID, "CL1", "  ", ClientTypeCompany)
		assert.Error(t, err)
	})

	t.Run("fails with unknown type", func(t *testing.T) {
		_, err := NewClient(tenantID, "CL1", "Acme", ClientType("robot"))
		assert.Error(t, err)
	})
}

func TestClient_SetContact(t *testing.T) {
	c, err := NewClient(uuid.New(), "CL1", "Acme", ClientTypeCompany)
	require.NoError(t, err)

	require.NoError(t, c.SetContact(ContactInfo{Email: " Billing@Acme.COM ", City: " Lyon "}))
	assert.Equal(t, "billing@acme.com", c.Contact.Email)
	assert.Equal(t, "Lyon", c.Contact.City)

	assert.Error(t, c.SetContact(ContactInfo{Email: "nope"}))
}

func TestClient_StatusTransitions(t *testing.T) {
	c, err := NewClient(uuid.New(), "CL1", "Acme", ClientTypeIndividual)
	require.NoError(t, err)
	version := c.Version

	assert.Error(t, c.Activate())
	require.NoError(t, c.Deactivate())
	assert.False(t, c.IsActive())
	assert.Greater(t, c.Version, version)
	require.NoError(t, c.Activate())
	assert.True(t, c.IsActive())
}

func TestVendor_Update(t *testing.T) {
	v, err := NewVendor(uuid.New(), "sup-1", "Paper Co")
	require.NoError(t, err)
	assert.Equal(t, "SUP-1", v.Code)
	assert.Equal(t, 30, v.PaymentTermsDays)

	require.NoError(t, v.Update("Paper Company", " Jane ", "FR123", "", 45))
	assert.Equal(t, "Paper Company", v.Name)
	assert.Equal(t, "Jane", v.ContactName)
	assert.Equal(t, 45, v.PaymentTermsDays)

	assert.Error(t, v.Update("Paper Company", "", "", "", -5))
}
