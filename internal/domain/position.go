package domain

// Position is one user's holding in one ticker. SharesOwned is always >= 1: a position that
// would reach zero is deleted instead.
type Position struct {
	ID          uint   `gorm:"column:id;primaryKey" json:"portfolio_id"`
	UserID      uint   `gorm:"column:user_id;not null;uniqueIndex:idx_position_user_ticker,priority:1" json:"user_id"`
	User        *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Ticker      string `gorm:"column:ticker;type:varchar(10);not null;uniqueIndex:idx_position_user_ticker,priority:2" json:"ticker"`
	SharesOwned int64  `gorm:"column:shares_owned;not null;check:chk_positions_shares,shares_owned > 0" json:"shares_owned"`
}

func (Position) TableName() string {
	return "positions"
}
