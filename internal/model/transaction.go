// Package model defines the records and derived views shared by the cache,
// the sandbox server, and the terminal consumers.
package model

import "time"

// TransactionType discriminates income from expense records.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Transaction is a server-owned record. Everything except ID, Type and Amount
// is metadata the cache carries without interpreting.
type Transaction struct {
	ID           string          `json:"id"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	Currency     string          `json:"currency"`
	CategoryID   *string         `json:"category_id,omitempty"`
	CategoryName *string         `json:"category_name,omitempty"`
	MerchantName *string         `json:"merchant_name,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Date         time.Time       `json:"date"`
	Tags         []string        `json:"tags"`
	IsRecurring  bool            `json:"is_recurring"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Label returns the most descriptive human label available.
func (t Transaction) Label() string {
	switch {
	case t.MerchantName != nil && *t.MerchantName != "":
		return *t.MerchantName
	case t.Description != nil && *t.Description != "":
		return *t.Description
	case t.CategoryName != nil && *t.CategoryName != "":
		return *t.CategoryName
	}
	return string(t.Type)
}

// Category returns the category name or "Uncategorized".
func (t Transaction) Category() string {
	if t.CategoryName != nil && *t.CategoryName != "" {
		return *t.CategoryName
	}
	return "Uncategorized"
}
