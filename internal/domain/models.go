package domain

// All lists every persisted entity, in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&StockQuote{},
		&Position{},
		&TransactionRecord{},
		&AdminAction{},
	}
}
