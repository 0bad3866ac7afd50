package core

import (
	"strings"
	"time"
)

// AccountFor synthesizes the account descriptor of a record from its
// polymorphic expenseable reference.
func AccountFor(expenseableType string, expenseableID *int64) Account {
	var id int64
	if expenseableID != nil {
		id = *expenseableID
	}

	var typ AccountType
	switch strings.ToLower(strings.TrimSpace(expenseableType)) {
	case "account", "bankaccount", "bank_account":
		typ = AccountBank
	case "creditcard", "credit_card":
		typ = AccountCreditCard
	case "wallet", "cash":
		typ = AccountCash
	default:
		typ = AccountOther
	}

	return Account{ID: id, Name: typ.DisplayName(), Type: typ}
}

// DisplayName returns the human readable name of an account type.
func (t AccountType) DisplayName() string {
	switch t {
	case AccountBank:
		return "Bank account"
	case AccountCreditCard:
		return "Credit card"
	case AccountCash:
		return "Cash"
	default:
		return "Account"
	}
}

// Notification is a user-visible message raised by the client, typically
// after a failed fetch cycle.
type Notification struct {
	UserID  string
	Level   NotificationLevel
	Title   string
	Message string
	Time    time.Time
}

type NotificationLevel string

const (
	NotificationInfo  NotificationLevel = "info"
	NotificationError NotificationLevel = "error"
)
