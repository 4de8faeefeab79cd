// internal/model/status.go
package model

// Status is the delivery/engagement state of a tracked email. Statuses are
// totally ordered by rank and a record's status only ever moves up.
type Status string

const (
    StatusQueued     Status = "queued"
    StatusSending    Status = "sending"
    StatusSent       Status = "sent"
    StatusDelivered  Status = "delivered"
    StatusOpened     Status = "opened"
    StatusClicked    Status = "clicked"
    StatusBounced    Status = "bounced"
    StatusComplained Status = "complained"
    StatusFailed     Status = "failed"
)

var statusRank = map[Status]int{
    StatusQueued:     10,
    StatusSending:    20,
    StatusSent:       30,
    StatusDelivered:  40,
    StatusOpened:     50,
    StatusClicked:    60,
    StatusBounced:    70,
    StatusComplained: 80,
    StatusFailed:     90,
}

// Rank returns the ordering weight of a status. An empty status ranks below
// everything so the first real status always applies; an unrecognized status
// ranks below queued.
func (s Status) Rank() int {
    if s == "" {
        return -1
    }
    if rank, ok := statusRank[s]; ok {
        return rank
    }
    return 0
}
