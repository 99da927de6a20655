package models

// Table identifies one logical local table. The queue and the sync engine
// dispatch on this instead of raw strings so the per-table switch stays
// exhaustive.
type Table string

const (
	TableProducts         Table = "products"
	TableCategories       Table = "categories"
	TableCustomers        Table = "customers"
	TableSuppliers        Table = "suppliers"
	TableSales            Table = "sales"
	TablePurchases        Table = "purchases"
	TableExpenses         Table = "expenses"
	TableCashTransactions Table = "cash_transactions"
	TableSettings         Table = "settings"
	TableStockAdjustments Table = "stock_adjustments"
)

// AllTables in a stable order, used by queue summaries.
func AllTables() []Table {
	return []Table{
		TableProducts,
		TableCategories,
		TableCustomers,
		TableSuppliers,
		TableSales,
		TablePurchases,
		TableExpenses,
		TableCashTransactions,
		TableSettings,
		TableStockAdjustments,
	}
}

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPartial PaymentStatus = "Partial"
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
)

type CashTransactionType string

const (
	CashTransactionTypeIn  CashTransactionType = "In"
	CashTransactionTypeOut CashTransactionType = "Out"
)
