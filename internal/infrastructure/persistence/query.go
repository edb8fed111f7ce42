package persistence

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tenantScope restricts a query to one tenant
func tenantScope(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// validateSortOrder normalizes the sort direction, defaulting to DESC
func validateSortOrder(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// validateSortField returns field when whitelisted, otherwise def
func validateSortField(field string, allowed map[string]bool, def string) string {
	field = strings.TrimSpace(field)
	if field != "" && allowed[field] {
		return field
	}
	return def
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// search adds a case-insensitive substring match over columns. LOWER/LIKE
// keeps the query portable between Postgres and SQLite.
func search(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// page counts the rows matched by q, then loads one ordered page of them.
// q must carry its model.
func page[M any](q *gorm.DB, filter shared.Filter, sortFields map[string]bool, defaultSort string) ([]M, int64, error) {
	f := filter.Normalize()
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []M
	if total == 0 {
		return rows, 0, nil
	}
	order := validateSortField(f.OrderBy, sortFields, defaultSort) + " " + validateSortOrder(f.OrderDir)
	if err := q.Order(order).Offset(f.Offset()).Limit(f.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// filterString returns a non-empty string filter value
func filterString(f shared.Filter, key string) (string, bool) {
	v, ok := f.Filters[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, s != ""
	case uuid.UUID:
		return s.String(), s != uuid.Nil
	case *uuid.UUID:
		if s == nil {
			return "", false
		}
		return s.String(), true
	}
	return "", false
}

// filterBool accepts bool or "true"/"false"
func filterBool(f shared.Filter, key string) (bool, bool) {
	switch v := f.Filters[key].(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}

// filterTime accepts a time.Time or a YYYY-MM-DD / RFC3339 string
func filterTime(f shared.Filter, key string) (time.Time, bool) {
	switch v := f.Filters[key].(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// filterInt accepts any int or a numeric string
func filterInt(f shared.Filter, key string) (int, bool) {
	switch v := f.Filters[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

// dateRange applies date_from / date_to to column
func dateRange(q *gorm.DB, f shared.Filter, column string) *gorm.DB {
	if from, ok := filterTime(f, "date_from"); ok {
		q = q.Where(column+" >= ?", from)
	}
	if to, ok := filterTime(f, "date_to"); ok {
		q = q.Where(column+" <= ?", to)
	}
	return q
}

// notFound maps gorm's missing record error to the domain one
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// Sort whitelists per table
var (
	commonSortFields = map[string]bool{"created_at": true, "updated_at": true}

	userSortFields = withCommon("username", "email", "display_name", "role", "status", "last_login_at")

	clientSortFields  = withCommon("code", "name", "type", "status", "city")
	vendorSortFields  = withCommon("code", "name", "status")
	productSortFields = withCommon("sku", "name", "category", "unit_price", "status")

	stockLevelSortFields    = withCommon("quantity", "min_quantity")
	stockMovementSortFields = withCommon("type", "quantity")

	invoiceSortFields  = withCommon("number", "issue_date", "due_date", "status", "total", "amount_paid")
	quoteSortFields    = withCommon("number", "issue_date", "valid_until", "status", "total")
	reminderSortFields = withCommon("level", "status", "scheduled_for", "sent_at")

	registerSortFields = withCommon("name", "status", "current_balance")
	cashMoveSortFields = withCommon("type", "amount")
	closingSortFields  = withCommon("closed_at", "difference")

	subscriptionSortFields = withCommon("name", "status", "billing_interval", "next_billing_date")
	marketSortFields       = withCommon("reference", "title", "status", "start_date", "end_date", "amount")
	expenseSortFields      = withCommon("expense_date", "category", "total", "net_amount")
	declarationSortFields  = withCommon("period_start", "status", "net_vat_due")
	auditSortFields        = map[string]bool{"occurred_at": true, "action": true, "entity_type": true}
	backupSortFields       = withCommon("started_at", "status", "size_bytes")
)

func withCommon(fields ...string) map[string]bool {
	m := make(map[string]bool, len(commonSortFields)+len(fields))
	for k := range commonSortFields {
		m[k] = true
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}
