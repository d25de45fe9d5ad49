package types

// Migration is a SQL migration. SQL holds both directions, the down part
// first, separated by the "-- +migrate Up" marker.
type Migration struct {
	ID  string
	SQL string
}
