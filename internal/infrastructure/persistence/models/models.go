package models

// All lists every model, in dependency order, for AutoMigrate in tests and
// for the tenant snapshot exporter.
func All() []any {
	return []any{
		&TenantModel{},
		&UserModel{},
		&CompanySettingsModel{},
		&ClientModel{},
		&VendorModel{},
		&ProductModel{},
		&StockLevelModel{},
		&StockMovementModel{},
		&DocumentSequenceModel{},
		&QuoteModel{},
		&InvoiceModel{},
		&InvoicePaymentModel{},
		&ReminderModel{},
		&CashRegisterModel{},
		&CashMovementModel{},
		&CashClosingModel{},
		&SubscriptionModel{},
		&MarketModel{},
		&ExpenseModel{},
		&TaxDeclarationModel{},
		&AuditLogModel{},
		&BackupModel{},
	}
}
