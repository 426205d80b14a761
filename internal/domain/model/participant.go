// Package model contains domain models passed between layers.
package model

import "time"

// ScanStatusChecked is the control status the provider reports once a
// ticket has been scanned at the gate.
const ScanStatusChecked = "1"

// Answer is a single label/value pair from the registration survey.
// Labels are free-form question text chosen by the event organizer.
type Answer struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Owner identifies the person the ticket belongs to. Every field may be
// empty.
type Owner struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ControlStatus reports gate-control state for a participant.
type ControlStatus struct {
	Status   string `json:"status"`
	ScanDate string `json:"scan_date"`
}

// Buyer is the purchaser of the order a participant belongs to. Field names
// mirror the provider wire shape. The buyer carries its own answers, used as
// a fallback source when a participant did not fill the survey.
type Buyer struct {
	ID        string   `json:"id_acheteur"`
	Email     string   `json:"email_acheteur"`
	LastName  string   `json:"acheteur_last_name"`
	FirstName string   `json:"acheteur_first_name"`
	Answers   []Answer `json:"answers,omitempty"`
}

// Participant is one ticketed attendee as returned by the provider.
// Only ID is guaranteed; every other field may be absent or empty.
type Participant struct {
	ID            int           `json:"id_participant"`
	Barcode       string        `json:"barcode"`
	CreateDate    string        `json:"create_date"`
	Deleted       string        `json:"deleted"`
	Paid          bool          `json:"paid"`
	Owner         Owner         `json:"owner"`
	ControlStatus ControlStatus `json:"control_status"`
	TicketID      string        `json:"id_ticket"`
	Answers       []Answer      `json:"answers,omitempty"`
	Buyer         *Buyer        `json:"buyer,omitempty"`
}

// Scanned reports whether the participant has been checked in.
func (p *Participant) Scanned() bool {
	return p.ControlStatus.Status == ScanStatusChecked
}

// Snapshot is a full point-in-time copy of the participant collection plus
// provider metadata. Each refresh replaces the previous snapshot wholesale;
// there is no incremental merge.
type Snapshot struct {
	ID             string        `json:"id"`
	Participants   []Participant `json:"participants"`
	ServerTime     string        `json:"server_time"`
	Counter        int           `json:"counter"`
	CounterDeleted int           `json:"counter_deleted"`
	CounterTotal   int           `json:"counter_total"`
	SyncedAt       time.Time     `json:"synced_at"`
}
