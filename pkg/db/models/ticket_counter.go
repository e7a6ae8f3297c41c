package models

// TicketCounter is a named monotonic sequence, bumped with an atomic
// UPDATE ... RETURNING so concurrent disputes never share a ticket number.
type TicketCounter struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}
