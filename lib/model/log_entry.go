package model

import "time"

type LogEntry struct {
	Revno      int
	CommitDate time.Time
	Author     string
	Message    string

	AddedFiles   int
	ChangedFiles int
	DeletedFiles int
}

func NewLogEntry(revno int) *LogEntry {
	return &LogEntry{
		Revno: revno,
	}
}
