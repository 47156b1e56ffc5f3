package model

import "fmt"

const (
	// OrderCounterKey names the single counter shared by every order prefix.
	OrderCounterKey = "order"
	// FirstOrderNumber is handed out when no counter record exists yet.
	FirstOrderNumber int64 = 1001
)

// Counter is a named integer sequence in the record store.
type Counter struct {
	ID    string
	Key   string
	Value int64
}

func FormatOrderID(prefix string, n int64) string {
	return fmt.Sprintf("CD-%s-%d", prefix, n)
}
