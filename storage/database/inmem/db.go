package inmemdb

import (
	"sync"

	"github.com/trezcool/mrejesho/core/session"
	"github.com/trezcool/mrejesho/core/submission"
)

type sessionTable struct {
	mutex sync.RWMutex
	table map[string]session.Record
}

type receiptKey struct {
	feedbackID      int
	feedbackGroupID int
	studentID       string
}

type receiptTable struct {
	mutex sync.Mutex
	pk    int
	table map[int]*submission.Receipt
	keys  map[receiptKey]int
}

// DB holds the in-memory tables.
type DB struct {
	session *sessionTable
	receipt *receiptTable
}

func NewDB() *DB {
	return &DB{
		session: &sessionTable{table: make(map[string]session.Record)},
		receipt: &receiptTable{
			table: make(map[int]*submission.Receipt),
			keys:  make(map[receiptKey]int),
		},
	}
}
