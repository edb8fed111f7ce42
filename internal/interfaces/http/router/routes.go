package router

import (
	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/interfaces/http/handler"
	"github.com/bizdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything mounted under the API prefix
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Settings     *handler.SettingsHandler
	Client       *handler.ClientHandler
	Vendor       *handler.VendorHandler
	Product      *handler.ProductHandler
	Stock        *handler.StockHandler
	Invoice      *handler.InvoiceHandler
	Quote        *handler.QuoteHandler
	Reminder     *handler.ReminderHandler
	Subscription *handler.SubscriptionHandler
	Market       *handler.MarketHandler
	Expense      *handler.ExpenseHandler
	Tax          *handler.TaxHandler
	CashRegister *handler.CashRegisterHandler
	Audit        *handler.AuditHandler
	Presence     *handler.PresenceHandler
	Backup       *handler.BackupHandler
	Report       *handler.ReportHandler
	Notification *handler.NotificationHandler

	// AuthLimit throttles the public auth endpoints when set
	AuthLimit gin.HandlerFunc
}

func can(resource, action string) gin.HandlerFunc {
	return middleware.RequireAction(resource, action)
}

// crud registers the five collection routes of a resource guarded by its
// CRUD permissions
func crud(g *DomainGroup, resource string, create, list, get, update, remove gin.HandlerFunc) {
	g.POST("", can(resource, identity.ActionCreate), create)
	g.GET("", can(resource, identity.ActionRead), list)
	g.GET("/:id", can(resource, identity.ActionRead), get)
	g.PUT("/:id", can(resource, identity.ActionUpdate), update)
	g.DELETE("/:id", can(resource, identity.ActionDelete), remove)
}

// APIGroups builds the route table of the API
func APIGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	auth := NewDomainGroup("auth", "/auth")
	public := []gin.HandlerFunc{}
	if h.AuthLimit != nil {
		public = append(public, h.AuthLimit)
	}
	auth.POST("/register", append(public, h.Auth.Register)...)
	auth.POST("/login", append(public, h.Auth.Login)...)
	auth.POST("/refresh", append(public, h.Auth.RefreshToken)...)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)
	auth.PUT("/me/password", h.Auth.ChangePassword)
	groups = append(groups, auth)

	users := NewDomainGroup("users", "/users")
	crud(users, identity.ResourceUser, h.User.Create, h.User.List, h.User.GetByID, h.User.Update, h.User.Delete)
	users.PUT("/:id/role", can(identity.ResourceUser, identity.ActionUpdate), h.User.ChangeRole)
	users.POST("/:id/activate", can(identity.ResourceUser, identity.ActionUpdate), h.User.Activate)
	users.POST("/:id/deactivate", can(identity.ResourceUser, identity.ActionUpdate), h.User.Deactivate)
	users.POST("/:id/reset-password", can(identity.ResourceUser, identity.ActionUpdate), h.User.ResetPassword)
	roles := NewDomainGroup("roles", "/roles")
	roles.GET("", can(identity.ResourceUser, identity.ActionRead), h.User.Roles)
	groups = append(groups, users, roles)

	settings := NewDomainGroup("settings", "/settings")
	settings.GET("", can(identity.ResourceSettings, identity.ActionRead), h.Settings.Get)
	settings.PUT("", can(identity.ResourceSettings, identity.ActionUpdate), h.Settings.Update)
	groups = append(groups, settings)

	clients := NewDomainGroup("clients", "/clients")
	crud(clients, identity.ResourceClient, h.Client.Create, h.Client.List, h.Client.GetByID, h.Client.Update, h.Client.Delete)
	clients.POST("/:id/activate", can(identity.ResourceClient, identity.ActionUpdate), h.Client.Activate)
	clients.POST("/:id/deactivate", can(identity.ResourceClient, identity.ActionUpdate), h.Client.Deactivate)

	vendors := NewDomainGroup("vendors", "/vendors")
	crud(vendors, identity.ResourceVendor, h.Vendor.Create, h.Vendor.List, h.Vendor.GetByID, h.Vendor.Update, h.Vendor.Delete)
	vendors.POST("/:id/activate", can(identity.ResourceVendor, identity.ActionUpdate), h.Vendor.Activate)
	vendors.POST("/:id/deactivate", can(identity.ResourceVendor, identity.ActionUpdate), h.Vendor.Deactivate)

	products := NewDomainGroup("products", "/products")
	crud(products, identity.ResourceProduct, h.Product.Create, h.Product.List, h.Product.GetByID, h.Product.Update, h.Product.Delete)
	products.POST("/:id/activate", can(identity.ResourceProduct, identity.ActionUpdate), h.Product.Activate)
	products.POST("/:id/deactivate", can(identity.ResourceProduct, identity.ActionUpdate), h.Product.Deactivate)
	groups = append(groups, clients, vendors, products)

	stock := NewDomainGroup("stock", "/stock")
	stock.GET("/levels", can(identity.ResourceStock, identity.ActionRead), h.Stock.ListLevels)
	stock.GET("/levels/:product_id", can(identity.ResourceStock, identity.ActionRead), h.Stock.GetLevel)
	stock.GET("/movements", can(identity.ResourceStock, identity.ActionRead), h.Stock.ListMovements)
	stock.POST("/receive", can(identity.ResourceStock, "receive"), h.Stock.Receive)
	stock.POST("/issue", can(identity.ResourceStock, "issue"), h.Stock.Issue)
	stock.POST("/adjust", can(identity.ResourceStock, "adjust"), h.Stock.Adjust)
	stock.PUT("/:product_id/min", can(identity.ResourceStock, identity.ActionUpdate), h.Stock.SetMinQuantity)
	groups = append(groups, stock)

	invoices := NewDomainGroup("invoices", "/invoices")
	crud(invoices, identity.ResourceInvoice, h.Invoice.Create, h.Invoice.List, h.Invoice.GetByID, h.Invoice.Update, h.Invoice.Delete)
	invoices.POST("/:id/send", can(identity.ResourceInvoice, "send"), h.Invoice.Send)
	invoices.POST("/:id/payments", can(identity.ResourceInvoice, "pay"), h.Invoice.RecordPayment)
	invoices.POST("/:id/cancel", can(identity.ResourceInvoice, "cancel"), h.Invoice.Cancel)
	invoices.GET("/:id/pdf", can(identity.ResourceInvoice, "export"), h.Invoice.PDF)

	quotes := NewDomainGroup("quotes", "/quotes")
	crud(quotes, identity.ResourceQuote, h.Quote.Create, h.Quote.List, h.Quote.GetByID, h.Quote.Update, h.Quote.Delete)
	quotes.POST("/:id/send", can(identity.ResourceQuote, "send"), h.Quote.Send)
	quotes.POST("/:id/accept", can(identity.ResourceQuote, identity.ActionUpdate), h.Quote.Accept)
	quotes.POST("/:id/reject", can(identity.ResourceQuote, identity.ActionUpdate), h.Quote.Reject)
	quotes.POST("/:id/convert", can(identity.ResourceQuote, "convert"), h.Quote.Convert)
	quotes.GET("/:id/pdf", can(identity.ResourceQuote, "export"), h.Quote.PDF)

	reminders := NewDomainGroup("reminders", "/reminders")
	reminders.GET("", can(identity.ResourceReminder, identity.ActionRead), h.Reminder.List)
	reminders.POST("", can(identity.ResourceReminder, identity.ActionCreate), h.Reminder.Create)
	reminders.POST("/:id/send", can(identity.ResourceReminder, "send"), h.Reminder.Send)

	billing := NewDomainGroup("billing", "/billing")
	billing.POST("/generate", can(identity.ResourceBilling, "generate"), h.Subscription.Generate)
	groups = append(groups, invoices, quotes, reminders, billing)

	subscriptions := NewDomainGroup("subscriptions", "/subscriptions")
	crud(subscriptions, identity.ResourceSubscription, h.Subscription.Create, h.Subscription.List, h.Subscription.GetByID, h.Subscription.Update, h.Subscription.Delete)
	subscriptions.POST("/:id/pause", can(identity.ResourceSubscription, identity.ActionUpdate), h.Subscription.Pause)
	subscriptions.POST("/:id/resume", can(identity.ResourceSubscription, identity.ActionUpdate), h.Subscription.Resume)
	subscriptions.POST("/:id/cancel", can(identity.ResourceSubscription, identity.ActionUpdate), h.Subscription.Cancel)

	markets := NewDomainGroup("markets", "/markets")
	crud(markets, identity.ResourceMarket, h.Market.Create, h.Market.List, h.Market.GetByID, h.Market.Update, h.Market.Delete)
	markets.POST("/:id/activate", can(identity.ResourceMarket, identity.ActionUpdate), h.Market.Activate)
	markets.POST("/:id/complete", can(identity.ResourceMarket, identity.ActionUpdate), h.Market.Complete)
	markets.POST("/:id/cancel", can(identity.ResourceMarket, identity.ActionUpdate), h.Market.Cancel)

	expenses := NewDomainGroup("expenses", "/expenses")
	crud(expenses, identity.ResourceExpense, h.Expense.Create, h.Expense.List, h.Expense.GetByID, h.Expense.Update, h.Expense.Delete)
	groups = append(groups, subscriptions, markets, expenses)

	tax := NewDomainGroup("tax", "/tax/declarations")
	tax.GET("", can(identity.ResourceTax, identity.ActionRead), h.Tax.List)
	tax.GET("/:id", can(identity.ResourceTax, identity.ActionRead), h.Tax.GetByID)
	tax.POST("/generate", can(identity.ResourceTax, "generate"), h.Tax.Generate)
	tax.POST("/:id/submit", can(identity.ResourceTax, "submit"), h.Tax.Submit)
	tax.DELETE("/:id", can(identity.ResourceTax, identity.ActionDelete), h.Tax.Delete)
	groups = append(groups, tax)

	registers := NewDomainGroup("cash-registers", "/cash-registers")
	crud(registers, identity.ResourceCash, h.CashRegister.Create, h.CashRegister.List, h.CashRegister.GetByID, h.CashRegister.Update, h.CashRegister.Delete)
	registers.POST("/:id/open", can(identity.ResourceCash, "open"), h.CashRegister.Open)
	registers.POST("/:id/close", can(identity.ResourceCash, "close"), h.CashRegister.Close)
	registers.POST("/:id/movements", can(identity.ResourceCash, "record"), h.CashRegister.RecordMovement)
	registers.GET("/:id/movements", can(identity.ResourceCash, identity.ActionRead), h.CashRegister.ListMovements)
	registers.GET("/:id/closings", can(identity.ResourceCash, identity.ActionRead), h.CashRegister.ListClosings)
	groups = append(groups, registers)

	audit := NewDomainGroup("audit", "/audit")
	audit.GET("/logs", can(identity.ResourceAudit, identity.ActionRead), h.Audit.List)

	// any signed-in user
	presence := NewDomainGroup("presence", "/presence")
	presence.POST("/heartbeat", h.Presence.Heartbeat)
	presence.POST("/leave", h.Presence.Leave)
	presence.GET("/online", h.Presence.Online)
	alerts := NewDomainGroup("alerts", "/alerts")
	alerts.POST("/validation", h.Presence.ValidationFailure)
	groups = append(groups, audit, presence, alerts)

	backups := NewDomainGroup("backups", "/backups")
	backups.GET("", can(identity.ResourceBackup, identity.ActionRead), h.Backup.List)
	backups.POST("", can(identity.ResourceBackup, "run"), h.Backup.Run)
	backups.GET("/:id", can(identity.ResourceBackup, identity.ActionRead), h.Backup.GetByID)
	backups.GET("/:id/download", can(identity.ResourceBackup, "download"), h.Backup.Download)
	backups.DELETE("/:id", can(identity.ResourceBackup, identity.ActionDelete), h.Backup.Delete)

	forecast := NewDomainGroup("forecast", "/forecast")
	forecast.POST("/revenue", can(identity.ResourceForecast, "run"), h.Report.Forecast)

	notifications := NewDomainGroup("notifications", "/notifications")
	notifications.POST("/email", can(identity.ResourceNotification, "send"), h.Notification.SendEmail)

	reports := NewDomainGroup("reports", "/reports")
	reports.GET("/dashboard", can(identity.ResourceReport, identity.ActionRead), h.Report.Dashboard)
	groups = append(groups, backups, forecast, notifications, reports)

	return groups
}

// Registrars adapts domain groups for Router.Register
func Registrars(groups []*DomainGroup) []RouteRegistrar {
	out := make([]RouteRegistrar, len(groups))
	for i, g := range groups {
		out[i] = g
	}
	return out
}
